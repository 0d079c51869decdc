package grading

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/codelab-grader/internal/events"
	"github.com/noah-isme/codelab-grader/internal/models"
	"github.com/noah-isme/codelab-grader/pkg/ai"
)

// DefaultInterval keeps the worker under a 10 requests/minute grading quota.
const DefaultInterval = 6500 * time.Millisecond

// SubmissionStore is the subset of the submission repository the worker needs.
type SubmissionStore interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
}

// WorkerConfig describes the worker's collaborators.
type WorkerConfig struct {
	Queue     *Queue
	Store     SubmissionStore
	Grader    ai.Grader
	Publisher events.Publisher
	Interval  time.Duration
	Logger    zerolog.Logger
}

// Worker drains the queue one job at a time and pauses for Interval after every job.
type Worker struct {
	queue     *Queue
	store     SubmissionStore
	grader    ai.Grader
	publisher events.Publisher
	interval  time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewWorker constructs the grading worker.
func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}

	return &Worker{
		queue:     cfg.Queue,
		store:     cfg.Store,
		grader:    cfg.Grader,
		publisher: cfg.Publisher,
		interval:  cfg.Interval,
		logger:    cfg.Logger.With().Str("component", "grading_worker").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/codelab-grader/internal/grading"),
	}
}

// Run processes jobs until ctx is cancelled. It returns ctx.Err().
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Msg("grading worker started")

	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.logger.Info().Msg("grading worker stopping")
			return err
		}

		w.Process(ctx, job)

		if err := sleep(ctx, w.interval); err != nil {
			w.logger.Info().Msg("grading worker stopping")
			return err
		}
	}
}

// Process grades a single job. Grading failures never escape: the submission is completed with a zero score
// and a fixed message instead.
func (w *Worker) Process(ctx context.Context, job Job) {
	ctx, span := w.tracer.Start(ctx, "grading.process", trace.WithAttributes(
		attribute.Int64("submission.id", int64(job.SubmissionID)),
		attribute.Int64("problem.id", int64(job.Problem.ID)),
	))
	defer span.End()

	logger := w.logger.With().Uint("submission_id", job.SubmissionID).Logger()

	submission, err := w.store.GetByID(ctx, job.SubmissionID)
	if err != nil {
		jobsTotal.WithLabelValues(outcomeSkipped).Inc()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug().Msg("submission removed before grading")
			return
		}
		span.RecordError(err)
		logger.Error().Err(err).Msg("failed to load submission")
		return
	}

	if submission.IsCompleted() {
		jobsTotal.WithLabelValues(outcomeSkipped).Inc()
		logger.Warn().Msg("submission already completed")
		return
	}

	logger.Info().Uint("problem_id", job.Problem.ID).Msg("grading submission")

	start := time.Now()
	err = w.grade(ctx, &submission, job)
	jobDuration.Observe(time.Since(start).Seconds())

	failed := err != nil
	if failed {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Msg("grading failed")

		submission.Fail()
		if err := w.store.Update(ctx, &submission); err != nil {
			jobsTotal.WithLabelValues(outcomeSkipped).Inc()
			logger.Error().Err(err).Msg("failed to store grading failure")
			return
		}
		jobsTotal.WithLabelValues(outcomeFailed).Inc()
	} else {
		jobsTotal.WithLabelValues(outcomeCompleted).Inc()
		logger.Info().Int("score", *submission.Score).Msg("grading completed")
	}

	w.publish(ctx, submission, failed)
}

func (w *Worker) grade(ctx context.Context, submission *models.Submission, job Job) error {
	result, err := w.grader.Grade(ctx, ai.GradingInput{
		ProblemTitle:       job.Problem.Title,
		ProblemDescription: job.Problem.Description,
		Criteria:           job.Problem.Criteria,
		Code:               job.Code,
	})
	if err != nil {
		return err
	}

	graded := *submission
	graded.Complete(result.Score, result.Feedback)
	if err := w.store.Update(ctx, &graded); err != nil {
		return err
	}

	*submission = graded
	return nil
}

func (w *Worker) publish(ctx context.Context, submission models.Submission, failed bool) {
	if w.publisher == nil {
		return
	}

	score := 0
	if submission.Score != nil {
		score = *submission.Score
	}

	event := events.SubmissionGraded{
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		ProblemID:    submission.ProblemID,
		Score:        score,
		Failed:       failed,
		GradedAt:     time.Now().UTC(),
	}
	if err := w.publisher.PublishGraded(ctx, event); err != nil {
		w.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish graded event")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
