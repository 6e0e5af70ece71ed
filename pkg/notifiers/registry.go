package notifiers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Builder creates a Notifier from a config entry.
type Builder func(ctx context.Context, cfg NotifierConfig, log Logger) (Notifier, error)

var builders = map[string]Builder{
	TypeLog:    newLogNotifier,
	TypeHTTP:   newHTTPNotifier,
	TypeSQS:    newSQSNotifier,
	TypeSNS:    newSNSNotifier,
	TypePubSub: newPubSubNotifier,
}

// Build creates the notifier for cfg, wrapped in a level filter when min_level is set.
func Build(ctx context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	builder := builders[strings.ToLower(cfg.Type)]
	if builder == nil {
		return nil, fmt.Errorf("no notifier registered for type %q", cfg.Type)
	}
	n, err := builder(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.MinLevel == "" {
		return n, nil
	}
	return &levelFilter{Notifier: n, minLevel: cfg.MinLevel}, nil
}

// BuildAll instantiates notifiers for cfgs. On failure it closes whatever was already built.
func BuildAll(ctx context.Context, cfgs []NotifierConfig, log Logger) ([]Notifier, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	out := make([]Notifier, 0, len(cfgs))
	for _, cfg := range cfgs {
		n, err := Build(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("notifier %q: %w", cfg.ID, err), NewFanout(out).Close())
		}
		out = append(out, n)
	}
	return out, nil
}
