package notifiers

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubNotifier struct {
	id       string
	typ      string
	err      error
	received []Notification
	closed   bool
}

func (s *stubNotifier) ID() string   { return s.id }
func (s *stubNotifier) Type() string { return s.typ }
func (s *stubNotifier) Notify(_ context.Context, n Notification) error {
	s.received = append(s.received, n)
	return s.err
}
func (s *stubNotifier) Close() error {
	s.closed = true
	return nil
}

type recordingLogger struct {
	noopLogger
	mu    sync.Mutex
	warns []string
}

func (r *recordingLogger) WarnObj(msg, _ string, _ interface{}) {
	r.mu.Lock()
	r.warns = append(r.warns, msg)
	r.mu.Unlock()
}

func TestFanoutNotifyAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Notifier{
		&stubNotifier{id: "ok", typ: TypeHTTP},
		nil,
		&stubNotifier{id: "bad", typ: TypeHTTP, err: errors.New("failed")},
	})
	if fanout.Size() != 2 {
		t.Fatalf("expected nil notifiers to be dropped, size=%d", fanout.Size())
	}

	count, err := fanout.Notify(context.Background(), Notification{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutCloseClosesClosers(t *testing.T) {
	stub := &stubNotifier{id: "s", typ: TypeLog}
	if err := NewFanout([]Notifier{stub}).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !stub.closed {
		t.Fatalf("expected notifier to be closed")
	}
}

func TestSinkErrorDeliversAndSwallowsFailures(t *testing.T) {
	good := &stubNotifier{id: "good", typ: TypeLog}
	bad := &stubNotifier{id: "bad", typ: TypeSQS, err: errors.New("down")}
	log := &recordingLogger{}

	sink := NewSink(NewFanout([]Notifier{good, bad}), "catalog", log)
	sink.Error(context.Background(), "product interface error")

	if len(good.received) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(good.received))
	}
	n := good.received[0]
	if n.Level != LevelError || n.Message != "product interface error" || n.Source != "catalog" {
		t.Fatalf("unexpected notification %+v", n)
	}
	if n.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	if len(log.warns) != 1 {
		t.Fatalf("expected delivery failure to be logged, got %v", log.warns)
	}
}

func TestBuildAllWiresKnownTypes(t *testing.T) {
	ns, err := BuildAll(context.Background(), []NotifierConfig{
		{ID: "log", Type: TypeLog},
		sanitizeNotifierConfig(NotifierConfig{ID: "hook", Type: TypeHTTP, HTTP: &HTTPNotifierConfig{URL: "https://example.com"}}),
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("expected 2 notifiers, got %d", len(ns))
	}
	if ns[0].Type() != TypeLog || ns[1].Type() != TypeHTTP {
		t.Fatalf("unexpected notifier types %s, %s", ns[0].Type(), ns[1].Type())
	}
}

func TestBuildAllRejectsUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), []NotifierConfig{{ID: "log", Type: TypeLog}, {ID: "x", Type: "smtp"}}, nil)
	if err == nil {
		t.Fatalf("expected error for unknown notifier type")
	}
}

func TestBuildWrapsMinLevel(t *testing.T) {
	n, err := Build(context.Background(), NotifierConfig{ID: "console", Type: TypeLog, MinLevel: LevelError}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := n.(*levelFilter); !ok {
		t.Fatalf("expected level filter, got %T", n)
	}
	if n.ID() != "console" || n.Type() != TypeLog {
		t.Fatalf("filter must keep identity, got %s/%s", n.ID(), n.Type())
	}

	plain, err := Build(context.Background(), NotifierConfig{ID: "console", Type: TypeLog}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := plain.(*levelFilter); ok {
		t.Fatalf("no min_level must not wrap")
	}
}

func TestLevelFilterDropsLowerLevels(t *testing.T) {
	cases := []struct {
		minLevel, level string
		delivered       bool
	}{
		{LevelError, LevelError, true},
		{LevelError, LevelWarn, false},
		{LevelError, LevelInfo, false},
		{LevelWarn, LevelError, true},
		{LevelWarn, LevelWarn, true},
		{LevelWarn, LevelInfo, false},
		{LevelInfo, LevelInfo, true},
		{LevelInfo, "trace", false},
	}
	for _, tc := range cases {
		stub := &stubNotifier{id: "s", typ: TypeHTTP}
		filter := &levelFilter{Notifier: stub, minLevel: tc.minLevel}
		if err := filter.Notify(context.Background(), Notification{Level: tc.level}); err != nil {
			t.Fatalf("Notify: %v", err)
		}
		if got := len(stub.received) == 1; got != tc.delivered {
			t.Fatalf("min=%s level=%s delivered=%v, want %v", tc.minLevel, tc.level, got, tc.delivered)
		}
	}
}

func TestLevelFilterClosesWrapped(t *testing.T) {
	stub := &stubNotifier{id: "s", typ: TypePubSub}
	if err := NewFanout([]Notifier{&levelFilter{Notifier: stub, minLevel: LevelWarn}}).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !stub.closed {
		t.Fatalf("expected wrapped notifier to be closed")
	}
}

func TestSinkWarnRespectsMinLevel(t *testing.T) {
	everything := &stubNotifier{id: "ops", typ: TypeSQS}
	errorsOnly := &stubNotifier{id: "user", typ: TypeHTTP}
	sink := NewSink(NewFanout([]Notifier{everything, &levelFilter{Notifier: errorsOnly, minLevel: LevelError}}), "catalog", nil)

	sink.Warn(context.Background(), "product list fetch failed")
	sink.Error(context.Background(), "product interface error")

	if len(everything.received) != 2 || everything.received[0].Level != LevelWarn {
		t.Fatalf("unfiltered sink got %+v", everything.received)
	}
	if len(errorsOnly.received) != 1 || errorsOnly.received[0].Level != LevelError {
		t.Fatalf("error-only sink got %+v", errorsOnly.received)
	}
}
