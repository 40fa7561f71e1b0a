package assistant

import (
	"context"
	"errors"
	"strings"
)

// Chain asks each Asker in turn and returns the first non-empty reply.
type Chain []Asker

func (c Chain) Ask(ctx context.Context, q Question) (string, error) {
	var errs []error
	for _, a := range c {
		if a == nil {
			continue
		}
		reply, err := a.Ask(ctx, q)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply, nil
		}
		if err == nil {
			err = errors.New("empty reply")
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return "", ErrUnavailable
	}
	return "", errors.Join(append([]error{ErrUnavailable}, errs...)...)
}
