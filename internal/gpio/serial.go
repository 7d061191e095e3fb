package gpio

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	// serialReadTimeout bounds how long a bridge may take to answer.
	serialReadTimeout = 100 * time.Millisecond
	// serialPollInterval is the port-level read timeout. A read that times
	// out returns no data and no error, so replies are polled until the
	// overall deadline.
	serialPollInterval = 10 * time.Millisecond
)

// inputFlusher is implemented by serial.Port.
type inputFlusher interface {
	ResetInputBuffer() error
}

// SerialAnalog reads analog samples from a microcontroller acting as an ADC
// bridge. Each request is the line "A<channel>" and the reply is the decimal
// reading on its own line.
type SerialAnalog struct {
	rw      io.ReadWriter
	closer  io.Closer
	channel int
	timeout time.Duration
}

// NewSerialAnalog opens the serial port at path (9600 8N1).
func NewSerialAnalog(path string, channel int) (*SerialAnalog, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(serialPollInterval); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	s := newSerialAnalog(port, channel)
	s.closer = port
	return s, nil
}

func newSerialAnalog(rw io.ReadWriter, channel int) *SerialAnalog {
	return &SerialAnalog{
		rw:      rw,
		channel: channel,
		timeout: serialReadTimeout,
	}
}

// ReadAnalog requests one sample from the bridge. Input left over from an
// earlier request is discarded first, so a late reply is never taken as the
// answer to a new request.
func (s *SerialAnalog) ReadAnalog() (int, error) {
	s.flush()

	if _, err := fmt.Fprintf(s.rw, "A%d\n", s.channel); err != nil {
		return 0, fmt.Errorf("serial request: %w", err)
	}

	line, err := s.readReply()
	if err != nil {
		s.flush()
		return 0, err
	}

	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("serial reply %q: %w", line, err)
	}
	if v < 0 || v > AnalogMax {
		return 0, fmt.Errorf("serial reply %d out of range 0-%d", v, AnalogMax)
	}
	return v, nil
}

// readReply reads until a newline arrives or the deadline passes. When more
// than one complete line is buffered the newest wins.
func (s *SerialAnalog) readReply() (string, error) {
	deadline := time.Now().Add(s.timeout)
	var pending []byte
	buf := make([]byte, 64)

	for {
		n, err := s.rw.Read(buf)
		pending = append(pending, buf[:n]...)

		if end := bytes.LastIndexByte(pending, '\n'); end >= 0 {
			complete := pending[:end]
			line := complete[bytes.LastIndexByte(complete, '\n')+1:]
			return strings.TrimSpace(string(line)), nil
		}
		if err != nil {
			return "", fmt.Errorf("serial reply: %w", err)
		}
		if !time.Now().Before(deadline) {
			return "", fmt.Errorf("serial reply: no answer within %v", s.timeout)
		}
	}
}

func (s *SerialAnalog) flush() {
	f, ok := s.rw.(inputFlusher)
	if !ok {
		return
	}
	if err := f.ResetInputBuffer(); err != nil {
		log.Printf("gpio: serial flush: %v", err)
	}
}

// Close closes the underlying port.
func (s *SerialAnalog) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
