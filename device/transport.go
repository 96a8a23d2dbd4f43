package device

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// probeTimeout bounds the read used to check for buffered input. It has to
// be short: the drain loop calls BytesAvailable once per byte consumed.
const probeTimeout = 20 * time.Millisecond

// Transport represents an established byte channel to a device.
//
// A Transport is assumed to be already connected and ready for use. It
// provides the low-level I/O primitives of the half-duplex exchange: write
// a request, read reply bytes, and report how many reply bytes are
// buffered. Typical implementations are serial ports and the test doubles
// in this package.
type Transport interface {
	// Write sends p to the device.
	Write(p []byte) (n int, err error)

	// Read fills p with up to len(p) reply bytes. It may return fewer
	// than requested and never blocks past the transport's own configured
	// read timeout.
	Read(p []byte) (n int, err error)

	// BytesAvailable reports how many reply bytes are buffered and can be
	// read without waiting for the device.
	BytesAvailable() (int, error)

	// Close releases the channel.
	Close() error
}

// Dialer opens a Transport to a device.
//
// Dialer abstracts how the connection is created (serial port or test
// double) and is used during session construction only. Once a Transport
// is obtained, the Dialer is no longer needed.
type Dialer interface {
	// Dial creates and returns a connected Transport configured with the
	// resolved settings. It may block and should respect cancellation via
	// the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context, settings SerialSettings) (Transport, error)
}

// SerialDialer opens a device over a serial port using go.bug.st/serial.
type SerialDialer struct{}

// Dial opens the serial port named by settings.Port with the resolved
// mode and read timeout.
func (SerialDialer) Dial(ctx context.Context, settings SerialSettings) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("device: context is nil")
	}
	if settings.Port == "" {
		return nil, errors.New("device: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	port, err := serial.Open(settings.Port, &settings.Mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", settings.Port, err)
	}

	readTimeout := settings.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = time.Second
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", settings.Port, err)
	}

	return &serialTransport{port: port, readTimeout: readTimeout}, nil
}

// serialTransport adapts a serial.Port to the Transport interface.
//
// Go serial ports expose no input-queue count, so BytesAvailable is
// emulated: a probe read with a short timeout pulls whatever the port has
// buffered into peek, and Read serves from peek before touching the port
// again. A probe that times out with nothing buffered returns zero.
type serialTransport struct {
	port        serial.Port
	readTimeout time.Duration
	peek        []byte
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *serialTransport) Read(p []byte) (int, error) {
	if len(t.peek) > 0 {
		n := copy(p, t.peek)
		t.peek = t.peek[n:]
		return n, nil
	}
	return t.port.Read(p)
}

func (t *serialTransport) BytesAvailable() (int, error) {
	if len(t.peek) > 0 {
		return len(t.peek), nil
	}

	if err := t.port.SetReadTimeout(probeTimeout); err != nil {
		return 0, err
	}
	defer t.port.SetReadTimeout(t.readTimeout)

	buf := make([]byte, 64)
	n, err := t.port.Read(buf)
	if err != nil {
		return 0, err
	}
	t.peek = append(t.peek, buf[:n]...)
	return len(t.peek), nil
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}
