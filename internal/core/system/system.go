// Package system defines the phase-ordered tick runner the game loop is
// built on.
package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session line queues
	PhasePreUpdate               // 1: deliver last tick's events, run due queued actions
	PhaseUpdate                  // 2: regen, combat rounds, restock, respawn
	PhaseOutput                  // 3: prompts + flush session buffers
	PhasePersist                 // 4: dirty boards and characters
	PhaseCleanup                 // 5: reap dead sessions
)

// System is one phase-bound unit of per-tick work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
