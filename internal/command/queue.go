package command

import "time"

// Action is one queued unit of work for an actor. Run executes on the game
// loop; Cooldown is the busy window it imposes once started.
type Action struct {
	Label    string
	Priority Priority
	Cooldown time.Duration
	Run      func()
}

// Queue serializes one actor's actions. The head entry is "in flight" while
// the actor's cooldown window covers it; later entries wait behind it. The
// queue is owned by the game loop, so no locking.
type Queue struct {
	pending   []*Action
	busyUntil time.Time
	busyPrio  Priority // priority of the action that set busyUntil
}

// NewQueue creates an empty action queue.
func NewQueue() *Queue { return &Queue{} }

// Len returns the number of queued (not yet run) actions.
func (q *Queue) Len() int { return len(q.pending) }

// Idle reports whether nothing is queued and no cooldown is in flight.
func (q *Queue) Idle(now time.Time) bool {
	return len(q.pending) == 0 && !now.Before(q.busyUntil)
}

// Push submits an action. If the actor is idle it runs immediately.
// While a cooldown is in flight, the action enqueues behind it unless its
// priority is strictly higher, in which case the pending head is cancelled
// and the preemptor runs now, discarding the cancelled action's effects.
func (q *Queue) Push(now time.Time, a *Action) {
	if q.Idle(now) {
		q.run(now, a)
		return
	}
	if a.Priority > q.busyPrio && now.Before(q.busyUntil) {
		// Preempt: drop the head waiting on the cooldown and clear the window.
		if len(q.pending) > 0 {
			q.pending = q.pending[1:]
		}
		q.busyUntil = now
		q.run(now, a)
		return
	}
	q.pending = append(q.pending, a)
}

// Update runs every action whose turn has come. Called once per game tick.
func (q *Queue) Update(now time.Time) {
	for len(q.pending) > 0 && !now.Before(q.busyUntil) {
		a := q.pending[0]
		q.pending = q.pending[1:]
		q.run(now, a)
	}
}

// Cancel removes queued actions without executing them and returns the count
// removed. With all=false only the next pending action is dropped.
func (q *Queue) Cancel(all bool) int {
	if len(q.pending) == 0 {
		return 0
	}
	if !all {
		q.pending = q.pending[1:]
		return 1
	}
	n := len(q.pending)
	q.pending = q.pending[:0]
	return n
}

// Clear drops everything, including the in-flight cooldown. Used when the
// actor's session closes.
func (q *Queue) Clear() {
	q.pending = q.pending[:0]
	q.busyUntil = time.Time{}
}

func (q *Queue) run(now time.Time, a *Action) {
	a.Run()
	if a.Cooldown > 0 {
		q.busyUntil = now.Add(a.Cooldown)
		q.busyPrio = a.Priority
	}
}
