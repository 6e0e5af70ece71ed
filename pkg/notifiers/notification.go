package notifiers

import "time"

const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var levelRank = map[string]int{
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ValidLevel reports whether level is one of the known notification levels.
func ValidLevel(level string) bool {
	_, ok := levelRank[level]
	return ok
}

// atLeast reports whether level ranks at or above minLevel. An empty minLevel admits
// everything; unknown levels never pass a non-empty one.
func atLeast(level, minLevel string) bool {
	if minLevel == "" {
		return true
	}
	return levelRank[level] > 0 && levelRank[level] >= levelRank[minLevel]
}

// Notification is the payload delivered to every sink.
type Notification struct {
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewNotification stamps a notification with the current UTC time.
func NewNotification(level, source, message string) Notification {
	return Notification{
		Level:      level,
		Message:    message,
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
}
