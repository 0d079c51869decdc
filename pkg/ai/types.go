package ai

import "context"

// GradingInput contains the artefacts needed to grade a code submission.
type GradingInput struct {
	ProblemTitle       string
	ProblemDescription string
	Criteria           string
	Code               string
}

// GradingResult is the structured score and feedback returned by a grader.
type GradingResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Grader describes an AI model capable of grading code submissions.
type Grader interface {
	Grade(ctx context.Context, input GradingInput) (GradingResult, error)
}
