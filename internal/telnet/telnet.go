// Package telnet implements the terminal transport: TCP accept, per-session
// option negotiation, line framing, in-band style codes, and outbound
// compression. Network I/O runs in per-session goroutines; the game loop only
// touches the session's channels and buffered output.
package telnet

// Telnet command bytes.
const (
	cmdSE   = 240 // end of subnegotiation
	cmdGA   = 249 // go ahead
	cmdSB   = 250 // start of subnegotiation
	cmdWILL = 251
	cmdWONT = 252
	cmdDO   = 253
	cmdDONT = 254
	cmdIAC  = 255
)

// Option codes the server understands. Everything else is refused.
const (
	OptEcho         byte = 1  // server-controlled echo (password entry)
	OptSuppressGA   byte = 3  // suppress go-ahead
	OptTerminalType byte = 24 // TTYPE
	OptWindowSize   byte = 31 // NAWS
	OptCompress     byte = 85 // MCCP v1
	OptCompress2    byte = 86 // MCCP v2
)

// TTYPE subnegotiation qualifiers.
const (
	ttypeIs   = 0
	ttypeSend = 1
)

func optionName(opt byte) string {
	switch opt {
	case OptEcho:
		return "echo"
	case OptSuppressGA:
		return "suppress-go-ahead"
	case OptTerminalType:
		return "terminal-type"
	case OptWindowSize:
		return "window-size"
	case OptCompress:
		return "compress"
	case OptCompress2:
		return "compress2"
	}
	return "unknown"
}
