package event

// Game-level events carried by the bus.

// PlayerEntered fires when a character finishes login and lands in a room.
type PlayerEntered struct {
	Username  string
	SessionID uint64
}

// PlayerLeft fires when a playing character's session closes.
type PlayerLeft struct {
	Username  string
	SessionID uint64
}

// MobDied fires when lethal damage lands; the killer may be empty for
// scripted or environmental deaths.
type MobDied struct {
	Victim string
	Killer string
}

// BoardPosted fires when a message lands on a board, so unread counts can
// be announced to interested characters.
type BoardPosted struct {
	Board  string
	Author string
	ID     int
}
