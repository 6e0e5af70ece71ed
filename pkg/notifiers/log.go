package notifiers

import "context"

// logNotifier writes notifications to the structured log.
type logNotifier struct {
	id  string
	log Logger
}

func newLogNotifier(_ context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	return &logNotifier{id: cfg.ID, log: ensureLogger(log)}, nil
}

func (l *logNotifier) ID() string   { return l.id }
func (l *logNotifier) Type() string { return TypeLog }

func (l *logNotifier) Notify(_ context.Context, n Notification) error {
	if n.Level == LevelError {
		l.log.ErrorObj(n.Message, "notification", n)
		return nil
	}
	l.log.InfoObj(n.Message, "notification", n)
	return nil
}
