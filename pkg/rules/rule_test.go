package rules_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/liquidtags/pkg/liquid"
	"github.com/walteh/liquidtags/pkg/rules"
	"github.com/walteh/liquidtags/pkg/telemetry"
)

type recordingSink struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (s *recordingSink) Emit(_ context.Context, ev telemetry.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

type brokenSink struct{}

func (brokenSink) Emit(context.Context, telemetry.Event) { panic("unreachable collector") }

func constRule(name string, priority int, out ...string) rules.Rule[string] {
	return rules.Rule[string]{
		Name:     name,
		Priority: priority,
		IsValid:  func(liquid.Token) bool { return true },
		Apply: func(context.Context, liquid.Token, *rules.Request) []string {
			return out
		},
	}
}

func TestRegistry_DispatchOrdersByPriority(t *testing.T) {
	reg := rules.NewRegistry(
		constRule("late", 5, "late"),
		constRule("first-tie", 1, "a"),
		constRule("second-tie", 1, "b"),
		constRule("middle", 3, "m1", "m2"),
	)

	got := reg.Dispatch(context.Background(), liquid.Token{}, &rules.Request{})

	assert.Equal(t, []string{"a", "b", "m1", "m2", "late"}, got)
}

func TestRegistry_SkipsInvalidRules(t *testing.T) {
	never := constRule("never", 0, "never")
	never.IsValid = func(liquid.Token) bool { return false }

	reg := rules.NewRegistry(never, constRule("always", 1, "always"))

	assert.Equal(t, []string{"always"}, reg.Dispatch(context.Background(), liquid.Token{}, nil))
}

func TestRegistry_InstallIsIdempotent(t *testing.T) {
	set := []rules.Rule[string]{constRule("one", 1, "x"), constRule("two", 2, "y")}

	reg := rules.NewRegistry(set...)
	reg.Install(set...)
	reg.Install(set...)

	assert.Len(t, reg.Rules(), 2)
	assert.Equal(t, []string{"x", "y"}, reg.Dispatch(context.Background(), liquid.Token{}, nil))
}

func TestRegistry_RecoversFromPanickingRule(t *testing.T) {
	bad := constRule("bad", 1)
	bad.Apply = func(context.Context, liquid.Token, *rules.Request) []string {
		panic("boom")
	}

	reg := rules.NewRegistry(bad, constRule("good", 2, "ok"))

	var got []string
	require.NotPanics(t, func() {
		got = reg.Dispatch(context.Background(), liquid.Token{}, nil)
	})
	assert.Equal(t, []string{"ok"}, got)
}

func TestRegistry_EmitsOneEventPerMatch(t *testing.T) {
	sink := &recordingSink{}
	reg := rules.NewRegistry(constRule("one", 1, "x"), constRule("empty", 2))

	reg.Dispatch(context.Background(), liquid.Token{}, &rules.Request{Sink: sink})

	require.Len(t, sink.events, 2)
	assert.Equal(t, "one", sink.events[0].Rule)
	assert.True(t, sink.events[0].Success)
	assert.Equal(t, "empty", sink.events[1].Rule)
	assert.False(t, sink.events[1].Success)
}

func TestRegistry_TelemetryFailureDoesNotChangeResults(t *testing.T) {
	reg := rules.NewRegistry(constRule("one", 1, "x"))

	got := reg.Dispatch(context.Background(), liquid.Token{}, &rules.Request{Sink: brokenSink{}})

	assert.Equal(t, []string{"x"}, got)
}
