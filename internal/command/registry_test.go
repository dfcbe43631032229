package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackindisguise/mud3-sub004/internal/world"
)

type lineSink struct{ lines []string }

func (s *lineSink) Deliver(group world.MessageGroup, line string) {
	s.lines = append(s.lines, line)
}

func TestDispatchPriorityOrder(t *testing.T) {
	actor := testActor(t)
	ctx := &Context{Actor: actor}
	r := NewRegistry()

	var ran []string
	require.NoError(t, r.Register(&Command{
		Name:    "shout",
		Pattern: "go <dir:word>",
		Execute: func(ctx *Context, args Args) error {
			ran = append(ran, "normal")
			return nil
		},
	}))
	require.NoError(t, r.Register(&Command{
		Name:     "override",
		Pattern:  "go <dir:word>",
		Priority: PriorityHigh,
		Execute: func(ctx *Context, args Args) error {
			ran = append(ran, "high")
			return nil
		},
	}))

	m, err := r.Dispatch(ctx, "go north")
	require.NoError(t, err)
	require.NoError(t, m.Command.Execute(ctx, m.Args))
	assert.Equal(t, []string{"high"}, ran)
}

func TestDispatchAliases(t *testing.T) {
	actor := testActor(t)
	ctx := &Context{Actor: actor}
	r := NewRegistry()
	require.NoError(t, r.Register(&Command{
		Name:    "inventory",
		Pattern: "inv~entory",
		Aliases: []string{"i"},
		Execute: func(ctx *Context, args Args) error { return nil },
	}))

	for _, line := range []string{"inv", "inventory", "i"} {
		m, err := r.Dispatch(ctx, line)
		require.NoError(t, err, line)
		assert.Equal(t, "inventory", m.Command.Name)
	}
}

func TestDispatchOnErrorStopsSearch(t *testing.T) {
	actor := testActor(t)
	ctx := &Context{Actor: actor}
	r := NewRegistry()

	var errSeen error
	require.NoError(t, r.Register(&Command{
		Name:    "get",
		Pattern: "get <what:object@room>",
		Execute: func(ctx *Context, args Args) error {
			t.Fatal("execute must not run on resolution failure")
			return nil
		},
		OnError: func(ctx *Context, err error) { errSeen = err },
	}))
	fallthroughRan := false
	require.NoError(t, r.Register(&Command{
		Name:    "get-fallback",
		Pattern: "get <what:word>",
		Execute: func(ctx *Context, args Args) error {
			fallthroughRan = true
			return nil
		},
	}))

	_, err := r.Dispatch(ctx, "get sword")
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "You don't see that here.", rerr.Message)
	assert.Equal(t, err, errSeen)
	assert.False(t, fallthroughRan)
}

func TestDispatchDefaultErrorSurfacesToActor(t *testing.T) {
	actor := testActor(t)
	sink := &lineSink{}
	actor.AttachSink(sink)
	ctx := &Context{Actor: actor}
	r := NewRegistry()
	require.NoError(t, r.Register(&Command{
		Name:    "get",
		Pattern: "get <what:object@room>",
		Execute: func(ctx *Context, args Args) error { return nil },
	}))

	_, err := r.Dispatch(ctx, "get sword")
	require.Error(t, err)
	require.Len(t, sink.lines, 1)
	assert.Equal(t, "You don't see that here.", sink.lines[0])
}

func TestDispatchNoMatch(t *testing.T) {
	actor := testActor(t)
	sink := &lineSink{}
	actor.AttachSink(sink)
	ctx := &Context{Actor: actor}
	r := NewRegistry()
	_, err := r.Dispatch(ctx, "frobnicate the thing")
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
	require.Len(t, sink.lines, 1)
	assert.Equal(t, "Huh?", sink.lines[0])
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Command{
		Name:    "noop",
		Pattern: "noop",
		Execute: func(ctx *Context, args Args) error { return nil },
	}))
	r.Unregister("noop")
	assert.Nil(t, r.Lookup("noop"))
	n := 0
	r.Each(func(*Command) { n++ })
	assert.Zero(t, n)
}

func TestQueueSerializesAndCoolsDown(t *testing.T) {
	q := NewQueue()
	now := time.Unix(1000, 0)
	var ran []string

	q.Push(now, &Action{Label: "a", Cooldown: time.Second, Run: func() { ran = append(ran, "a") }})
	q.Push(now, &Action{Label: "b", Run: func() { ran = append(ran, "b") }})
	assert.Equal(t, []string{"a"}, ran, "b waits behind a's cooldown")
	assert.Equal(t, 1, q.Len())

	q.Update(now.Add(500 * time.Millisecond))
	assert.Equal(t, []string{"a"}, ran)
	q.Update(now.Add(time.Second))
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.True(t, q.Idle(now.Add(time.Second)))
}

func TestQueuePreemption(t *testing.T) {
	q := NewQueue()
	now := time.Unix(1000, 0)
	var ran []string

	q.Push(now, &Action{Label: "slow", Cooldown: time.Minute, Run: func() { ran = append(ran, "slow") }})
	q.Push(now, &Action{Label: "queued", Run: func() { ran = append(ran, "queued") }})
	q.Push(now, &Action{Label: "urgent", Priority: PriorityHigh, Run: func() { ran = append(ran, "urgent") }})

	// The urgent action cancels the pending head and runs immediately.
	assert.Equal(t, []string{"slow", "urgent"}, ran)
	assert.Zero(t, q.Len())
}

func TestQueueCancelCounts(t *testing.T) {
	q := NewQueue()
	now := time.Unix(1000, 0)

	q.Push(now, &Action{Label: "busy", Cooldown: time.Minute, Run: func() {}})
	q.Push(now, &Action{Label: "one", Run: func() {}})
	q.Push(now, &Action{Label: "two", Run: func() {}})

	assert.Equal(t, 2, q.Cancel(true))
	assert.Equal(t, 0, q.Cancel(true))

	q.Push(now, &Action{Label: "three", Run: func() {}})
	assert.Equal(t, 1, q.Cancel(false))
}
