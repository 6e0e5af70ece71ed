package notifiers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout dispatches notifications to all configured notifiers.
type Fanout struct {
	notifiers []Notifier
}

// NewFanout builds a dispatcher that fans out notifications across notifiers.
func NewFanout(ns []Notifier) *Fanout {
	cp := make([]Notifier, 0, len(ns))
	for _, n := range ns {
		if n == nil {
			continue
		}
		cp = append(cp, n)
	}
	return &Fanout{notifiers: cp}
}

// Notify forwards the notification to every registered notifier.
// It returns the number of notifiers that successfully handled it.
func (f *Fanout) Notify(ctx context.Context, n Notification) (int, error) {
	if f == nil || len(f.notifiers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, nt := range f.notifiers {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s notifier[%s]: %w", nt.Type(), nt.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active notifiers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.notifiers)
}

// Close releases notifiers holding connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, n := range f.notifiers {
		if c, ok := n.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s notifier[%s]: %w", n.Type(), n.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Sink turns a Fanout into a fire-and-forget error reporter.
type Sink struct {
	fanout *Fanout
	source string
	log    Logger
}

// NewSink builds a Sink labelling notifications with source.
func NewSink(fanout *Fanout, source string, log Logger) *Sink {
	return &Sink{fanout: fanout, source: source, log: ensureLogger(log)}
}

// Error delivers message at error level. Delivery failures are logged, never returned.
func (s *Sink) Error(ctx context.Context, message string) {
	s.notify(ctx, LevelError, message)
}

// Warn delivers message at warn level; sinks with min_level error skip it.
func (s *Sink) Warn(ctx context.Context, message string) {
	s.notify(ctx, LevelWarn, message)
}

func (s *Sink) notify(ctx context.Context, level, message string) {
	if s == nil {
		return
	}
	delivered, err := s.fanout.Notify(ctx, NewNotification(level, s.source, message))
	if err != nil {
		s.log.WarnObj("notification delivery failed", "notification_error", map[string]any{
			"level":     level,
			"message":   message,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}
