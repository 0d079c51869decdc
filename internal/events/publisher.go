package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SubmissionGraded is emitted after a submission reaches the completed state.
type SubmissionGraded struct {
	SubmissionID uint      `json:"submission_id"`
	StudentID    uint      `json:"student_id"`
	ProblemID    uint      `json:"problem_id"`
	Score        int       `json:"score"`
	Failed       bool      `json:"failed"`
	GradedAt     time.Time `json:"graded_at"`
}

// Publisher fans grading events out to interested listeners.
type Publisher interface {
	PublishGraded(ctx context.Context, event SubmissionGraded) error
}

// BrokerPublisher publishes events to a Redis channel and a NATS subject. Either transport may be nil.
type BrokerPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
}

// NewBrokerPublisher derives the Redis channel and NATS subject from channelBase, e.g. "codelab:grading"
// becomes channel "codelab:grading:graded" and subject "codelab.grading.graded".
func NewBrokerPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *BrokerPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":graded"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".graded"
	}

	return &BrokerPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "grading_events").Logger(),
	}
}

// RedisChannel returns the pub/sub channel graded events are published on.
func (p *BrokerPublisher) RedisChannel() string {
	return p.redisChannel
}

// NATSSubject returns the subject graded events are published on.
func (p *BrokerPublisher) NATSSubject() string {
	return p.natsSubject
}

// PublishGraded serialises the event and sends it to every configured transport.
func (p *BrokerPublisher) PublishGraded(ctx context.Context, event SubmissionGraded) error {
	if event.GradedAt.IsZero() {
		event.GradedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			return err
		}
	}

	p.logger.Debug().Uint("submission_id", event.SubmissionID).Msg("graded event published")
	return nil
}
