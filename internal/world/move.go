package world

import "errors"

// ErrNoExit is returned when no neighbor exists in the requested direction.
var ErrNoExit = errors.New("no exit in that direction")

// ErrCannotMove is returned when the mob's state prevents movement.
var ErrCannotMove = errors.New("cannot move")

// CanStep reports whether the mob could take one step in the direction:
// a neighbor exists, the room permits the exit, the neighbor permits entry,
// and the mob is not prevented by state.
func CanStep(m *Mob, d Direction) bool {
	r := m.Room()
	if r == nil || !m.CanMove() {
		return false
	}
	n := r.Neighbor(d)
	if n == nil {
		return false
	}
	return n.PermitsEntry(r, d)
}

// Step re-parents the mob one room over and fires the source room's OnExit
// then the destination's OnEnter with the reversed direction, in that order.
func Step(m *Mob, d Direction) error {
	r := m.Room()
	if r == nil || !m.CanMove() {
		return ErrCannotMove
	}
	n := r.Neighbor(d)
	if n == nil || !n.PermitsEntry(r, d) {
		return ErrNoExit
	}
	if err := n.Add(m); err != nil {
		return err
	}
	if r.OnExit != nil {
		r.OnExit(m, d)
	}
	if n.OnEnter != nil {
		n.OnEnter(m, d.Reverse())
	}
	return nil
}

// MoveOptions drives the composed Move operation. Direction-less moves
// (teleports) set To and leave Direction nil.
type MoveOptions struct {
	To        *Room
	Direction *Direction

	PreExit   func(m *Mob) error // veto hook; non-nil error aborts
	PostExit  func(m *Mob)
	PreEnter  func(m *Mob) error
	PostEnter func(m *Mob)
}

// Move relocates a mob with narrative hooks interleaved around the
// re-parenting. With a Direction it behaves like Step; with only a
// destination it teleports.
func Move(m *Mob, opt MoveOptions) error {
	if !m.CanMove() {
		return ErrCannotMove
	}
	dest := opt.To
	if opt.Direction != nil {
		r := m.Room()
		if r == nil {
			return ErrCannotMove
		}
		dest = r.Neighbor(*opt.Direction)
		if dest == nil || !dest.PermitsEntry(r, *opt.Direction) {
			return ErrNoExit
		}
	}
	if dest == nil {
		return ErrNoExit
	}
	if opt.PreExit != nil {
		if err := opt.PreExit(m); err != nil {
			return err
		}
	}
	if opt.PreEnter != nil {
		if err := opt.PreEnter(m); err != nil {
			return err
		}
	}
	src := m.Room()
	if err := dest.Add(m); err != nil {
		return err
	}
	if opt.PostExit != nil {
		opt.PostExit(m)
	}
	if src != nil && src.OnExit != nil && opt.Direction != nil {
		src.OnExit(m, *opt.Direction)
	}
	if dest.OnEnter != nil && opt.Direction != nil {
		dest.OnEnter(m, opt.Direction.Reverse())
	}
	if opt.PostEnter != nil {
		opt.PostEnter(m)
	}
	return nil
}
