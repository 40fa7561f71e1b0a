package assistant

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"study-buddy/api/internal/tutor"
)

// ErrUnavailable is the single failure kind of an Asker: the reply could not be obtained.
var ErrUnavailable = errors.New("assistant unavailable")

type Question struct {
	Message  string
	Context  string
	Mode     tutor.Mode
	Language string
	Class    string
	Subject  string
}

func (q Question) promptRequest() tutor.PromptRequest {
	return tutor.PromptRequest{Mode: q.Mode, Language: q.Language, Class: q.Class, Subject: q.Subject}
}

type Asker interface {
	Ask(ctx context.Context, q Question) (string, error)
}

const DefaultDelay = time.Second

// Assistant asks the primary Asker and answers from the offline rules when it fails.
type Assistant struct {
	primary  Asker
	fallback *tutor.Responder
	delay    time.Duration
}

type Option func(*Assistant)

// WithDelay sets the pause before a local answer; zero or negative disables it.
func WithDelay(d time.Duration) Option { return func(a *Assistant) { a.delay = d } }

func WithResponder(r *tutor.Responder) Option {
	return func(a *Assistant) {
		if r != nil {
			a.fallback = r
		}
	}
}

// New builds an Assistant. A nil primary always answers locally.
func New(primary Asker, opts ...Option) *Assistant {
	a := &Assistant{
		primary:  primary,
		fallback: tutor.NewResponder(),
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reply never fails: any error from the primary is logged and replaced with a local answer.
func (a *Assistant) Reply(ctx context.Context, q Question) string {
	if a.primary != nil {
		reply, err := a.primary.Ask(ctx, q)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		if err == nil {
			err = errors.New("empty reply")
		}
		log.Printf("assistant unavailable, answering locally: %v", err)
	}

	if a.delay > 0 {
		t := time.NewTimer(a.delay)
		select {
		case <-ctx.Done():
		case <-t.C:
		}
		t.Stop()
	}
	return a.fallback.Respond(tutor.ResponseQuery{Message: q.Message, Context: q.Context, Mode: q.Mode})
}
