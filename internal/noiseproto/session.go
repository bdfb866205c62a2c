package noiseproto

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/flynn/noise"
)

// Session is an established, authenticated, encrypted channel, safe for
// one concurrent writer and one concurrent reader (spec.md §9: writes
// must be serialized because Noise CipherStates use a sequential nonce
// counter; reads are naturally serialized by the blocking read pattern).
type Session struct {
	conn io.ReadWriter

	writeMu sync.Mutex
	send    *noise.CipherState
	recv    *noise.CipherState
}

func newSession(conn io.ReadWriter, send, recv *noise.CipherState) *Session {
	return &Session{conn: conn, send: send, recv: recv}
}

// Send encrypts and transmits one logical message as a single frame.
func (s *Session) Send(plaintext []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ciphertext, err := s.send.Encrypt(nil, nil, plaintext)
	if err != nil {
		return fmt.Errorf("noiseproto: encrypt: %w", err)
	}
	return writeFrame(s.conn, ciphertext)
}

// Recv reads and decrypts the next frame. It is not safe to call
// concurrently with another Recv.
func (s *Session) Recv() ([]byte, error) {
	ciphertext, err := readFrame(s.conn)
	if err != nil {
		return nil, err
	}
	plaintext, err := s.recv.Decrypt(nil, nil, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("noiseproto: decrypt: %w", err)
	}
	return plaintext, nil
}

// Close closes the underlying connection, if it supports closing.
func (s *Session) Close() error {
	if c, ok := s.conn.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type deadliner interface {
	SetDeadline(time.Time) error
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

// SetDeadline, SetReadDeadline and SetWriteDeadline forward to the
// underlying connection when it supports deadlines (spec.md §5: "socket
// I/O = 10-20s per operation"); they are no-ops otherwise.
func (s *Session) SetDeadline(t time.Time) error {
	if d, ok := s.conn.(deadliner); ok {
		return d.SetDeadline(t)
	}
	return nil
}

func (s *Session) SetReadDeadline(t time.Time) error {
	if d, ok := s.conn.(deadliner); ok {
		return d.SetReadDeadline(t)
	}
	return nil
}

func (s *Session) SetWriteDeadline(t time.Time) error {
	if d, ok := s.conn.(deadliner); ok {
		return d.SetWriteDeadline(t)
	}
	return nil
}
