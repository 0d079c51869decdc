package grading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/codelab-grader/internal/catalog"
	"github.com/noah-isme/codelab-grader/internal/events"
	"github.com/noah-isme/codelab-grader/internal/models"
	"github.com/noah-isme/codelab-grader/internal/repository"
	"github.com/noah-isme/codelab-grader/pkg/ai"
)

type gradeCall struct {
	code  string
	start time.Time
	end   time.Time
}

type recordingGrader struct {
	mu      sync.Mutex
	calls   []gradeCall
	delay   time.Duration
	results map[string]ai.GradingResult
	errs    map[string]error
	done    chan struct{}
}

func newRecordingGrader(delay time.Duration) *recordingGrader {
	return &recordingGrader{
		delay:   delay,
		results: map[string]ai.GradingResult{},
		errs:    map[string]error{},
		done:    make(chan struct{}, 64),
	}
}

func (g *recordingGrader) Grade(ctx context.Context, input ai.GradingInput) (ai.GradingResult, error) {
	start := time.Now()
	if g.delay > 0 {
		time.Sleep(g.delay)
	}

	g.mu.Lock()
	g.calls = append(g.calls, gradeCall{code: input.Code, start: start, end: time.Now()})
	result, ok := g.results[input.Code]
	err := g.errs[input.Code]
	g.mu.Unlock()

	g.done <- struct{}{}

	if err != nil {
		return ai.GradingResult{}, err
	}
	if !ok {
		result = ai.GradingResult{Score: 50, Feedback: "ok"}
	}
	return result, nil
}

func (g *recordingGrader) snapshot() []gradeCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gradeCall(nil), g.calls...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SubmissionGraded
}

func (p *recordingPublisher) PublishGraded(_ context.Context, event events.SubmissionGraded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type failingStore struct {
	SubmissionStore
	failUpdates int
	updates     int
}

func (s *failingStore) Update(ctx context.Context, submission *models.Submission) error {
	s.updates++
	if s.updates <= s.failUpdates {
		return errors.New("database is locked")
	}
	return s.SubmissionStore.Update(ctx, submission)
}

func setupStore(t *testing.T) repository.SubmissionRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}))

	// One connection serialises the worker goroutine and the test's reads.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return repository.NewSubmissionRepository(db)
}

func createGrading(t *testing.T, store repository.SubmissionRepository, code string) models.Submission {
	t.Helper()
	submission := models.Submission{
		StudentID:  1,
		ProblemID:  3,
		CodeAnswer: code,
		Status:     models.SubmissionStatusGrading,
		AIFeedback: models.FeedbackQueued,
	}
	require.NoError(t, store.Create(context.Background(), &submission))
	return submission
}

var testProblem = catalog.Problem{ID: 3, Title: "덧셈", Description: "두 수를 더하세요", Criteria: "정확성"}

func TestWorkerProcessStoresGradingResult(t *testing.T) {
	store := setupStore(t)
	grader := newRecordingGrader(0)
	grader.results["print(1+2)"] = ai.GradingResult{Score: 85, Feedback: "Nice job"}
	publisher := &recordingPublisher{}

	worker := NewWorker(WorkerConfig{Queue: NewQueue(), Store: store, Grader: grader, Publisher: publisher, Logger: zerolog.Nop()})
	submission := createGrading(t, store, "print(1+2)")

	worker.Process(context.Background(), Job{SubmissionID: submission.ID, Problem: testProblem, Code: "print(1+2)"})

	stored, err := store.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusCompleted, stored.Status)
	require.Equal(t, 85, *stored.Score)
	require.Equal(t, "Nice job", stored.AIFeedback)

	require.Len(t, publisher.events, 1)
	require.Equal(t, submission.ID, publisher.events[0].SubmissionID)
	require.False(t, publisher.events[0].Failed)
}

func TestWorkerProcessDegradesGraderFailure(t *testing.T) {
	store := setupStore(t)
	grader := newRecordingGrader(0)
	grader.errs["boom"] = errors.New("dial tcp: connection refused")
	publisher := &recordingPublisher{}

	worker := NewWorker(WorkerConfig{Queue: NewQueue(), Store: store, Grader: grader, Publisher: publisher, Logger: zerolog.Nop()})
	submission := createGrading(t, store, "boom")

	worker.Process(context.Background(), Job{SubmissionID: submission.ID, Problem: testProblem, Code: "boom"})

	stored, err := store.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusCompleted, stored.Status)
	require.Equal(t, 0, *stored.Score)
	require.Equal(t, models.FeedbackGradingFailed, stored.AIFeedback)
	require.True(t, publisher.events[0].Failed)
}

func TestWorkerProcessDegradesPersistFailure(t *testing.T) {
	repo := setupStore(t)
	store := &failingStore{SubmissionStore: repo, failUpdates: 1}
	grader := newRecordingGrader(0)
	grader.results["print()"] = ai.GradingResult{Score: 100, Feedback: "perfect"}

	worker := NewWorker(WorkerConfig{Queue: NewQueue(), Store: store, Grader: grader, Logger: zerolog.Nop()})
	submission := createGrading(t, repo, "print()")

	worker.Process(context.Background(), Job{SubmissionID: submission.ID, Problem: testProblem, Code: "print()"})

	stored, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusCompleted, stored.Status)
	require.Equal(t, 0, *stored.Score)
	require.Equal(t, models.FeedbackGradingFailed, stored.AIFeedback)
}

func TestWorkerProcessSkipsMissingAndCompletedSubmissions(t *testing.T) {
	store := setupStore(t)
	grader := newRecordingGrader(0)
	publisher := &recordingPublisher{}
	worker := NewWorker(WorkerConfig{Queue: NewQueue(), Store: store, Grader: grader, Publisher: publisher, Logger: zerolog.Nop()})

	worker.Process(context.Background(), Job{SubmissionID: 4242, Problem: testProblem, Code: "gone"})

	completed := createGrading(t, store, "done")
	completed.Complete(77, "already graded")
	require.NoError(t, store.Update(context.Background(), &completed))

	worker.Process(context.Background(), Job{SubmissionID: completed.ID, Problem: testProblem, Code: "done"})

	require.Empty(t, grader.snapshot())
	require.Empty(t, publisher.events)

	stored, err := store.GetByID(context.Background(), completed.ID)
	require.NoError(t, err)
	require.Equal(t, 77, *stored.Score)
	require.Equal(t, "already graded", stored.AIFeedback)
}

func TestWorkerRunGradesInOrderWithRateFloor(t *testing.T) {
	const interval = 80 * time.Millisecond

	store := setupStore(t)
	queue := NewQueue()
	grader := newRecordingGrader(20 * time.Millisecond)
	grader.errs["second"] = errors.New("upstream 503")

	worker := NewWorker(WorkerConfig{Queue: queue, Store: store, Grader: grader, Interval: interval, Logger: zerolog.Nop()})

	codes := []string{"first", "second", "third"}
	ids := make([]uint, 0, len(codes))
	for _, code := range codes {
		submission := createGrading(t, store, code)
		ids = append(ids, submission.ID)
		queue.Enqueue(Job{SubmissionID: submission.ID, Problem: testProblem, Code: code})
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- worker.Run(ctx) }()

	for range codes {
		select {
		case <-grader.done:
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not grade every job")
		}
	}

	// The last call returns before its row is persisted; wait for the store to catch up.
	require.Eventually(t, func() bool {
		stored, err := store.GetByID(context.Background(), ids[len(ids)-1])
		return err == nil && stored.IsCompleted()
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-stopped, context.Canceled)

	calls := grader.snapshot()
	require.Len(t, calls, len(codes))
	for i, call := range calls {
		require.Equal(t, codes[i], call.code)
		if i == 0 {
			continue
		}
		gap := call.start.Sub(calls[i-1].end)
		require.GreaterOrEqual(t, gap, interval, "call %d started %s after the previous one ended", i, gap)
	}

	for i, id := range ids {
		stored, err := store.GetByID(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, models.SubmissionStatusCompleted, stored.Status)
		require.NotNil(t, stored.Score)
		require.GreaterOrEqual(t, *stored.Score, 0)
		require.LessOrEqual(t, *stored.Score, 100)
		if codes[i] == "second" {
			require.Equal(t, models.FeedbackGradingFailed, stored.AIFeedback)
		}
	}
}

func TestWorkerRunStopsWhileIdle(t *testing.T) {
	worker := NewWorker(WorkerConfig{Queue: NewQueue(), Store: setupStore(t), Grader: newRecordingGrader(0), Interval: time.Millisecond, Logger: zerolog.Nop()})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, worker.Run(ctx), context.DeadlineExceeded)
}
