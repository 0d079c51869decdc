package ai

import "strings"

// SystemPrompt is the fixed grading policy sent with every request.
const SystemPrompt = `당신은 학교 선생님을 돕는 AI 보조교사입니다.
학생의 코드를 채점하고 피드백을 줄 때 다음 원칙을 반드시 지키세요:
0. 모든 설명은 한국어로 작성하세요.
1. 정답 코드를 그대로 알려주지 마세요. 학생이 스스로 고칠 수 있도록 힌트를 주세요.
2. 먼저 잘한 점을 칭찬하고, 고칠 점은 부드럽게 이야기하세요.
3. 점수는 코드의 정확성과 문제 요구사항 충족 여부에 따라 0~100 사이의 정수로 매기세요.
4. 문법 오류가 있다면 어느 부분이 틀렸는지 구체적으로 짚어주세요.
5. 학생들은 예외 처리(try-except) 같은 어려운 문법을 배우지 않았습니다. 기초 문법 수준에서 설명하세요.`

const responseInstruction = `Return SINGLE JSON: "score"(int), "feedback"(str)`

// BuildPrompt renders the user prompt for a grading request.
func BuildPrompt(input GradingInput) string {
	builder := strings.Builder{}
	builder.WriteString("[Problem] ")
	builder.WriteString(input.ProblemTitle)
	builder.WriteString("\n[Desc] ")
	builder.WriteString(input.ProblemDescription)
	builder.WriteString("\n[Criteria] ")
	builder.WriteString(input.Criteria)
	builder.WriteString("\n[Code]\n")
	builder.WriteString(input.Code)
	builder.WriteString("\n")
	builder.WriteString(responseInstruction)
	return builder.String()
}

