package notifiers

import "context"

// Notifier delivers a notification to a downstream sink (log, SQS, HTTP, etc).
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, n Notification) error
}
