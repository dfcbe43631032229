package telnet

// OptionState is the per-option negotiation state.
type OptionState int

const (
	// StateNone means no negotiation has touched the option.
	StateNone OptionState = iota
	// StatePendingSend means we sent our request and await the reply.
	StatePendingSend
	// StateNegotiated means both sides agreed to enable the option.
	StateNegotiated
	// StateRejected means the peer refused the option.
	StateRejected
	// StateDisabled means the option was enabled and later turned off.
	StateDisabled
)

func (s OptionState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StatePendingSend:
		return "pending-send"
	case StateNegotiated:
		return "negotiated"
	case StateRejected:
		return "rejected"
	case StateDisabled:
		return "disabled"
	}
	return "invalid"
}

// terminal reports whether the state ends a negotiation.
func (s OptionState) terminal() bool {
	return s == StateNegotiated || s == StateRejected || s == StateDisabled
}

// negotiator tracks option state for one session. It is driven entirely from
// the session's readLoop goroutine; replies go out through the session's raw
// write path.
type negotiator struct {
	// local: options we offer with WILL (we perform them).
	// remote: options we request with DO (the client performs them).
	local  map[byte]OptionState
	remote map[byte]OptionState

	onEnable func(opt byte, local bool)
}

func newNegotiator(onEnable func(opt byte, local bool)) *negotiator {
	return &negotiator{
		local:    make(map[byte]OptionState),
		remote:   make(map[byte]OptionState),
		onEnable: onEnable,
	}
}

// offer marks a locally performed option as requested (IAC WILL opt).
func (n *negotiator) offer(opt byte) []byte {
	if n.local[opt] == StatePendingSend {
		return nil
	}
	n.local[opt] = StatePendingSend
	return []byte{cmdIAC, cmdWILL, opt}
}

// request marks a remotely performed option as requested (IAC DO opt).
func (n *negotiator) request(opt byte) []byte {
	if n.remote[opt] == StatePendingSend {
		return nil
	}
	n.remote[opt] = StatePendingSend
	return []byte{cmdIAC, cmdDO, opt}
}

// handle processes one inbound negotiation command and returns the bytes to
// reply with, if any. Duplicate agreements are idempotent and produce no
// reply; unknown options are refused.
func (n *negotiator) handle(cmd, opt byte) []byte {
	switch cmd {
	case cmdDO: // client asks us to perform opt
		switch n.local[opt] {
		case StatePendingSend:
			n.local[opt] = StateNegotiated
			if n.onEnable != nil {
				n.onEnable(opt, true)
			}
			return nil
		case StateNegotiated:
			return nil
		default:
			if n.supportsLocal(opt) {
				n.local[opt] = StateNegotiated
				if n.onEnable != nil {
					n.onEnable(opt, true)
				}
				return []byte{cmdIAC, cmdWILL, opt}
			}
			return []byte{cmdIAC, cmdWONT, opt}
		}
	case cmdDONT:
		switch n.local[opt] {
		case StatePendingSend:
			n.local[opt] = StateRejected
		case StateNegotiated:
			n.local[opt] = StateDisabled
			return []byte{cmdIAC, cmdWONT, opt}
		}
		return nil
	case cmdWILL: // client offers to perform opt
		switch n.remote[opt] {
		case StatePendingSend:
			n.remote[opt] = StateNegotiated
			if n.onEnable != nil {
				n.onEnable(opt, false)
			}
			return nil
		case StateNegotiated:
			return nil
		default:
			if n.supportsRemote(opt) {
				n.remote[opt] = StateNegotiated
				if n.onEnable != nil {
					n.onEnable(opt, false)
				}
				return []byte{cmdIAC, cmdDO, opt}
			}
			return []byte{cmdIAC, cmdDONT, opt}
		}
	case cmdWONT:
		switch n.remote[opt] {
		case StatePendingSend:
			n.remote[opt] = StateRejected
		case StateNegotiated:
			n.remote[opt] = StateDisabled
			return []byte{cmdIAC, cmdDONT, opt}
		}
		return nil
	}
	return nil
}

func (n *negotiator) supportsLocal(opt byte) bool {
	switch opt {
	case OptEcho, OptSuppressGA, OptCompress, OptCompress2:
		return true
	}
	return false
}

func (n *negotiator) supportsRemote(opt byte) bool {
	switch opt {
	case OptTerminalType, OptWindowSize:
		return true
	}
	return false
}

// settled reports whether every initiated negotiation reached a terminal
// state. The connection-ready event waits for this or a timeout.
func (n *negotiator) settled() bool {
	for _, st := range n.local {
		if st == StatePendingSend {
			return false
		}
	}
	for _, st := range n.remote {
		if st == StatePendingSend {
			return false
		}
	}
	return true
}

// localState returns the state of a locally performed option.
func (n *negotiator) localState(opt byte) OptionState { return n.local[opt] }

// remoteState returns the state of a remotely performed option.
func (n *negotiator) remoteState(opt byte) OptionState { return n.remote[opt] }
