package notifiers

import "context"

// levelFilter drops notifications ranked below minLevel before they reach the wrapped sink.
type levelFilter struct {
	Notifier
	minLevel string
}

func (f *levelFilter) Notify(ctx context.Context, n Notification) error {
	if !atLeast(n.Level, f.minLevel) {
		return nil
	}
	return f.Notifier.Notify(ctx, n)
}

func (f *levelFilter) Close() error {
	if c, ok := f.Notifier.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
