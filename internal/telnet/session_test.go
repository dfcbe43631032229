package telnet

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// pipeSession wires a session over net.Pipe. The client half is drained by a
// background goroutine so server writes never block.
func pipeSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	s := NewSession(server, 1, 16, 16, zap.NewNop())
	go io.Copy(io.Discard, client)
	s.Start(50 * time.Millisecond)
	t.Cleanup(func() {
		s.Close()
		client.Close()
	})
	return s, client
}

func readLine(t *testing.T, s *Session) string {
	t.Helper()
	select {
	case line := <-s.InQueue:
		return line
	case <-time.After(time.Second):
		t.Fatal("no line delivered")
		return ""
	}
}

func TestSessionLineFraming(t *testing.T) {
	s, client := pipeSession(t)

	_, err := client.Write([]byte("hello world\r\nsecond\r\n\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", readLine(t, s))
	assert.Equal(t, "second", readLine(t, s))
	assert.Equal(t, "", readLine(t, s), "empty lines are delivered")
}

func TestSessionFiltersNegotiation(t *testing.T) {
	s, client := pipeSession(t)

	// Negotiation bytes interleaved with text must not reach the line.
	_, err := client.Write([]byte{'h', 'i', cmdIAC, cmdDO, OptSuppressGA, '!', '\r', '\n'})
	require.NoError(t, err)
	assert.Equal(t, "hi!", readLine(t, s))

	// Escaped IAC becomes a literal byte.
	_, err = client.Write([]byte{'a', cmdIAC, cmdIAC, 'b', '\n'})
	require.NoError(t, err)
	assert.Equal(t, "a\xffb", readLine(t, s))
}

func TestSessionNAWSSubnegotiation(t *testing.T) {
	s, client := pipeSession(t)

	_, err := client.Write([]byte{
		cmdIAC, cmdWILL, OptWindowSize,
		cmdIAC, cmdSB, OptWindowSize, 0, 120, 0, 40, cmdIAC, cmdSE,
		'o', 'k', '\n',
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", readLine(t, s))
	w, h := s.WindowSize()
	assert.Equal(t, 120, w)
	assert.Equal(t, 40, h)
}

func TestSessionTerminalType(t *testing.T) {
	s, client := pipeSession(t)

	_, err := client.Write([]byte{
		cmdIAC, cmdWILL, OptTerminalType,
		cmdIAC, cmdSB, OptTerminalType, ttypeIs, 'x', 't', 'e', 'r', 'm', cmdIAC, cmdSE,
		'\n',
	})
	require.NoError(t, err)
	readLine(t, s)
	assert.Equal(t, "xterm", s.TerminalType())
}

func TestSessionReadyFiresOnTimeout(t *testing.T) {
	s, _ := pipeSession(t)
	select {
	case <-s.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready never fired")
	}
}

func TestSessionReadyFiresWhenSettled(t *testing.T) {
	server, client := net.Pipe()
	s := NewSession(server, 2, 16, 16, zap.NewNop())
	go io.Copy(io.Discard, client)
	s.Start(5 * time.Second)
	defer s.Close()
	defer client.Close()

	// Answer all five initiated negotiations.
	_, err := client.Write([]byte{
		cmdIAC, cmdDO, OptSuppressGA,
		cmdIAC, cmdDONT, OptCompress2,
		cmdIAC, cmdDONT, OptCompress,
		cmdIAC, cmdWONT, OptTerminalType,
		cmdIAC, cmdWONT, OptWindowSize,
	})
	require.NoError(t, err)

	select {
	case <-s.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready did not fire after negotiations settled")
	}
	assert.False(t, s.CompressionActive())
}

func TestSessionCompressV1Fallback(t *testing.T) {
	server, client := net.Pipe()
	s := NewSession(server, 3, 16, 16, zap.NewNop())
	go io.Copy(io.Discard, client)
	s.Start(5 * time.Second)
	defer s.Close()
	defer client.Close()

	// The client takes the v1 compression offer and refuses v2.
	_, err := client.Write([]byte{
		cmdIAC, cmdDO, OptSuppressGA,
		cmdIAC, cmdDONT, OptCompress2,
		cmdIAC, cmdDO, OptCompress,
		cmdIAC, cmdWONT, OptTerminalType,
		cmdIAC, cmdWONT, OptWindowSize,
	})
	require.NoError(t, err)

	select {
	case <-s.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready did not fire after negotiations settled")
	}
	assert.True(t, s.CompressionActive())
}

func TestFlushOutputBackpressure(t *testing.T) {
	server, client := net.Pipe()
	// Tiny out queue and no draining writer: flushing past capacity must
	// disconnect instead of blocking.
	s := NewSession(server, 2, 1, 2, zap.NewNop())
	defer client.Close()

	s.Send([]byte("one"))
	s.Send([]byte("two"))
	s.Send([]byte("three"))
	s.FlushOutput()
	assert.True(t, s.IsClosed())
}
