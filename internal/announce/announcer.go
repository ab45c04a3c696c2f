package announce

import (
	"context"
	"fmt"

	logx "reblograffle/pkg/logx"
)

// Announcer posts a message to one channel.
type Announcer interface {
	Name() string
	Announce(ctx context.Context, msg Message) error
}

// NotifyError is a RemoteNotifyFailure on one channel.
type NotifyError struct {
	Channel    string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NotifyError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("announce via %s: http %d: %v", e.Channel, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("announce via %s: %v", e.Channel, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

// Multi announces on every channel in order and stops at the first failure.
type Multi struct {
	list []Announcer
	log  logx.Logger
}

func NewMulti(log logx.Logger, list ...Announcer) *Multi {
	if log.IsZero() {
		log = logx.Nop()
	}
	out := make([]Announcer, 0, len(list))
	for _, a := range list {
		if a != nil {
			out = append(out, a)
		}
	}
	return &Multi{list: out, log: log}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Len() int { return len(m.list) }

func (m *Multi) Announce(ctx context.Context, msg Message) error {
	for _, a := range m.list {
		if err := a.Announce(ctx, msg); err != nil {
			return err
		}
		m.log.Info("announced", logx.String("channel", a.Name()), logx.Int("winners", len(msg.Winners())))
	}
	return nil
}
