package telnet

import (
	"bufio"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// maxLineLength caps one inbound line; bytes past it are discarded.
const maxLineLength = 4096

// Session represents one client connection. Network I/O runs in dedicated
// goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn net.Conn

	InQueue  chan string // game loop reads complete lines from here
	OutQueue chan []byte // writer goroutine reads from here

	IP string

	outBuf [][]byte // buffered writes, flushed by the game loop once per batch

	// Negotiation results, readable after Ready fires.
	terminalType atomic.Value // string
	width        atomic.Int32
	height       atomic.Int32

	neg *negotiator

	// mu guards the write side: the active writer (raw socket or
	// compressor) and direct negotiation writes.
	mu   sync.Mutex
	w    io.Writer
	comp *compressor

	ready     chan struct{}
	readyOnce sync.Once

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	lastInput atomic.Int64 // unix seconds of the last received line

	log *zap.Logger
}

// NewSession wraps an accepted connection. Start launches the I/O goroutines.
func NewSession(conn net.Conn, id uint64, inSize, outSize int, log *zap.Logger) *Session {
	s := &Session{
		ID:       id,
		conn:     conn,
		InQueue:  make(chan string, inSize),
		OutQueue: make(chan []byte, outSize),
		IP:       conn.RemoteAddr().String(),
		ready:    make(chan struct{}),
		closeCh:  make(chan struct{}),
		w:        conn,
		log:      log.With(zap.Uint64("session", id)),
	}
	s.neg = newNegotiator(s.onOptionEnabled)
	s.lastInput.Store(time.Now().Unix())
	return s
}

// Start initiates option negotiation and launches the reader and writer
// goroutines. Ready fires once negotiations settle or the timeout elapses;
// no greeting byte may be written before that, or a client that negotiates
// compression would misparse the stream.
func (s *Session) Start(negotiationTimeout time.Duration) {
	var req []byte
	req = append(req, s.neg.offer(OptSuppressGA)...)
	req = append(req, s.neg.offer(OptCompress2)...)
	req = append(req, s.neg.offer(OptCompress)...)
	req = append(req, s.neg.request(OptTerminalType)...)
	req = append(req, s.neg.request(OptWindowSize)...)
	if err := s.writeRaw(req); err != nil {
		s.log.Debug("negotiation write failed", zap.Error(err))
		s.Close()
		return
	}

	timer := time.AfterFunc(negotiationTimeout, s.fireReady)
	go func() {
		s.readLoop()
		timer.Stop()
	}()
	go s.writeLoop()
}

// Ready is closed once all initiated negotiations reached a terminal state
// or the negotiation timeout elapsed, whichever first.
func (s *Session) Ready() <-chan struct{} { return s.ready }

func (s *Session) fireReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// TerminalType returns the client-reported terminal name, or "".
func (s *Session) TerminalType() string {
	t, _ := s.terminalType.Load().(string)
	return t
}

// WindowSize returns the client-reported dimensions, or zeros.
func (s *Session) WindowSize() (width, height int) {
	return int(s.width.Load()), int(s.height.Load())
}

// CompressionActive reports whether outbound bytes are being deflated.
func (s *Session) CompressionActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comp != nil
}

// IdleSince returns the time of the last received line.
func (s *Session) IdleSince() time.Time {
	return time.Unix(s.lastInput.Load(), 0)
}

// Send buffers bytes for sending. Nothing is written to TCP until
// FlushOutput is called by the game loop at the end of a batch.
// Called only from the game loop goroutine.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// SendLine buffers a text line with the CRLF delimiter appended.
func (s *Session) SendLine(text string) {
	s.Send(append([]byte(text), '\r', '\n'))
}

// FlushOutput drains the output buffer to OutQueue for the writer goroutine.
// Non-blocking: a full queue means the client cannot keep up, and the
// session is disconnected rather than stalling the game loop.
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow client")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// SuppressEcho turns the client's local echo off (password entry) or back on.
func (s *Session) SuppressEcho(on bool) {
	var msg []byte
	if on {
		msg = s.neg.offer(OptEcho)
	} else {
		s.neg.local[OptEcho] = StateDisabled
		msg = []byte{cmdIAC, cmdWONT, OptEcho}
	}
	if msg != nil {
		s.writeRaw(msg)
	}
}

// Close gracefully shuts down the session. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.fireReady()
		s.mu.Lock()
		if s.comp != nil {
			s.comp.Close()
			s.comp = nil
		}
		s.mu.Unlock()
		s.conn.Close()
	})
}

// IsClosed reports whether Close ran.
func (s *Session) IsClosed() bool { return s.closed.Load() }

// writeRaw writes through the current writer (compressed once MCCP starts).
// Safe from any goroutine.
func (s *Session) writeRaw(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(data)
	return err
}

// onOptionEnabled reacts to a negotiation reaching the enabled state.
// Runs on the readLoop goroutine.
func (s *Session) onOptionEnabled(opt byte, local bool) {
	switch {
	case local && (opt == OptCompress2 || opt == OptCompress):
		s.startCompression(opt)
	case !local && opt == OptTerminalType:
		// Ask the client to send its terminal name.
		s.writeRaw([]byte{cmdIAC, cmdSB, OptTerminalType, ttypeSend, cmdIAC, cmdSE})
	}
	s.log.Debug("option enabled",
		zap.String("option", optionName(opt)),
		zap.Bool("local", local))
}

// startCompression announces compression with the subnegotiation sentinel
// sent uncompressed, then routes all subsequent writes through the deflater.
// A client accepting both versions compresses under whichever enabled first.
func (s *Session) startCompression(opt byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.comp != nil {
		return
	}
	// The v1 sentinel carries WILL where v2 carries IAC, a quirk of the
	// original MCCP draft.
	sentinel := []byte{cmdIAC, cmdSB, opt, cmdIAC, cmdSE}
	if opt == OptCompress {
		sentinel = []byte{cmdIAC, cmdSB, opt, cmdWILL, cmdSE}
	}
	if _, err := s.conn.Write(sentinel); err != nil {
		return
	}
	s.comp = newCompressor(s.conn)
	s.w = s.comp
}

// readLoop reads the socket, filters telnet negotiation bytes, accumulates
// lines, and pushes them onto InQueue. Runs in its own goroutine.
func (s *Session) readLoop() {
	defer s.Close()

	const (
		stText = iota
		stIAC
		stCmd // after WILL/WONT/DO/DONT, awaiting the option byte
		stSB
		stSBIAC
	)
	state := stText
	var cmd byte
	var line []byte
	var sb []byte

	br := bufio.NewReader(s.conn)
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		b, err := br.ReadByte()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		switch state {
		case stText:
			switch b {
			case cmdIAC:
				state = stIAC
			case '\n':
				if !s.deliverLine(string(line)) {
					return
				}
				line = line[:0]
			case '\r':
				// stripped
			default:
				if len(line) < maxLineLength {
					line = append(line, b)
				}
			}
		case stIAC:
			switch b {
			case cmdIAC:
				if len(line) < maxLineLength {
					line = append(line, b)
				}
				state = stText
			case cmdWILL, cmdWONT, cmdDO, cmdDONT:
				cmd = b
				state = stCmd
			case cmdSB:
				sb = sb[:0]
				state = stSB
			default:
				// GA, NOP and friends carry no payload.
				state = stText
			}
		case stCmd:
			if reply := s.neg.handle(cmd, b); reply != nil {
				if err := s.writeRaw(reply); err != nil {
					return
				}
			}
			if s.neg.settled() {
				s.fireReady()
			}
			state = stText
		case stSB:
			if b == cmdIAC {
				state = stSBIAC
			} else {
				sb = append(sb, b)
			}
		case stSBIAC:
			switch b {
			case cmdIAC:
				sb = append(sb, cmdIAC)
				state = stSB
			case cmdSE:
				s.handleSubnegotiation(sb)
				state = stText
			default:
				state = stText
			}
		}
	}
}

// deliverLine pushes one complete line to the game loop, blocking until the
// queue has room. Blocking only stalls this client's reader.
func (s *Session) deliverLine(line string) bool {
	s.lastInput.Store(time.Now().Unix())
	select {
	case s.InQueue <- line:
		return true
	case <-s.closeCh:
		return false
	}
}

// handleSubnegotiation consumes one complete SB payload.
func (s *Session) handleSubnegotiation(data []byte) {
	if len(data) == 0 {
		return
	}
	switch data[0] {
	case OptTerminalType:
		if len(data) >= 2 && data[1] == ttypeIs {
			s.terminalType.Store(string(data[2:]))
		}
	case OptWindowSize:
		if len(data) == 5 {
			s.width.Store(int32(data[1])<<8 | int32(data[2]))
			s.height.Store(int32(data[3])<<8 | int32(data[4]))
		}
	}
}

// writeLoop drains OutQueue to the socket. Runs in its own goroutine.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.writeRaw(data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
