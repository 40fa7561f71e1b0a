package assistant

import (
	"context"
	"fmt"

	"study-buddy/api/internal/llm"
	"study-buddy/api/internal/tutor"
)

// Direct asks a language model in-process with the persona for the question's mode.
type Direct struct {
	Engine   llm.Engine
	Selector *tutor.Selector
}

func NewDirect(eng llm.Engine, sel *tutor.Selector) *Direct {
	if sel == nil {
		sel = tutor.NewSelector()
	}
	return &Direct{Engine: eng, Selector: sel}
}

func (d *Direct) Ask(ctx context.Context, q Question) (string, error) {
	if d.Engine == nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, llm.ErrNoEngine)
	}
	reply, err := d.Engine.Chat(ctx, d.Selector.Build(q.promptRequest(), q.Context, q.Message))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, d.Engine.Name(), err)
	}
	return reply, nil
}
