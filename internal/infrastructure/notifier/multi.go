package notifier

import (
	"context"
	"errors"
)

type publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// Multi fans an event out to every sink. One failing sink does not stop the
// others.
type Multi []publisher

// NewMulti builds a fan-out, skipping nil sinks
func NewMulti(sinks ...publisher) Multi {
	m := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m Multi) Publish(ctx context.Context, topic string, payload interface{}) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, topic, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
