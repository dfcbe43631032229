package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	lines  []string
	groups []MessageGroup
}

func (s *recordingSink) Deliver(group MessageGroup, line string) {
	s.groups = append(s.groups, group)
	s.lines = append(s.lines, line)
}

func TestActFansOutPerRecipient(t *testing.T) {
	_, d := testDungeon(t)
	room, err := d.CreateRoom(0, 0, 0, "square", "The Square")
	require.NoError(t, err)

	user := NewMob("alice", "alice")
	target := NewMob("bob", "bob")
	bystander := NewMob("carol", "carol")
	userSink, targetSink, roomSink := &recordingSink{}, &recordingSink{}, &recordingSink{}
	user.AttachSink(userSink)
	target.AttachSink(targetSink)
	bystander.AttachSink(roomSink)
	require.NoError(t, room.Add(user))
	require.NoError(t, room.Add(target))
	require.NoError(t, room.Add(bystander))

	Act(user, target,
		"You wave at {target}.",
		"{User} waves at you.",
		"{User} waves at {target}.",
		ActOptions{Group: GroupAction})

	require.Len(t, userSink.lines, 1)
	assert.Equal(t, "You wave at bob.", userSink.lines[0])
	require.Len(t, targetSink.lines, 1)
	assert.Equal(t, "Alice waves at you.", targetSink.lines[0])
	require.Len(t, roomSink.lines, 1)
	assert.Equal(t, "Alice waves at bob.", roomSink.lines[0])
	assert.Equal(t, GroupAction, roomSink.groups[0])
}

func TestActWithoutTarget(t *testing.T) {
	_, d := testDungeon(t)
	room, err := d.CreateRoom(0, 0, 0, "square", "The Square")
	require.NoError(t, err)

	user := NewMob("alice", "alice")
	bystander := NewMob("bob", "bob")
	userSink, roomSink := &recordingSink{}, &recordingSink{}
	user.AttachSink(userSink)
	bystander.AttachSink(roomSink)
	require.NoError(t, room.Add(user))
	require.NoError(t, room.Add(bystander))

	Act(user, nil, "You grin.", "", "{User} grins.", ActOptions{})

	require.Len(t, userSink.lines, 1)
	assert.Equal(t, "You grin.", userSink.lines[0])
	require.Len(t, roomSink.lines, 1)
	assert.Equal(t, "Alice grins.", roomSink.lines[0])
}

func TestActExcludesParticipants(t *testing.T) {
	_, d := testDungeon(t)
	room, err := d.CreateRoom(0, 0, 0, "square", "The Square")
	require.NoError(t, err)

	user := NewMob("alice", "alice")
	userSink := &recordingSink{}
	user.AttachSink(userSink)
	require.NoError(t, room.Add(user))

	Act(user, nil, "You sneak.", "", "Someone sneaks.", ActOptions{ExcludeUser: true})
	assert.Empty(t, userSink.lines)
}
