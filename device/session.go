// Package device implements the command-dispatch and response-validation
// engine for serial-attached devices described by declarative grammars.
//
// A Session owns one transport and one resolved grammar. Callers issue
// symbolic (command, action) pairs; the session renders the wire string,
// performs the optional handshake, runs the half-duplex exchange and
// classifies the reply against the grammar's response rules.
package device

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Session is one logical connection to a device. The protocol is strictly
// synchronous request/response with no pipelining: a Session holds no
// reentrancy guard and must not be used from concurrent goroutines.
type Session struct {
	// cfg is the grammar and transport settings resolved for this session.
	cfg *EffectiveConfig
	// transport is the byte channel to the device.
	transport Transport
	// logger receives diagnostics, including advisory handshake mismatches.
	logger *slog.Logger
	// closed indicates the session has been shut down.
	closed bool
}

// New resolves the grammar for config.DeviceID, applies the transport
// overrides and dials the transport.
//
// Returns ErrDeviceConfigMissing if the registry has no grammar for the
// device, ErrInvalidConfig if the grammar is structurally incomplete or
// references unrecognized transport settings, or the dialer's error if
// the transport cannot be opened.
func New(ctx context.Context, config Config) (*Session, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	cfg, err := resolve(config.Registry, config.DeviceID, config.Overrides)
	if err != nil {
		return nil, err
	}
	if len(cfg.Ignored) > 0 {
		config.Logger.Warn("ignoring unsupported serial settings", "device", config.DeviceID, "settings", cfg.Ignored)
	}

	transport, err := config.Dialer.Dial(ctx, cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("dial device %q: %w", config.DeviceID, err)
	}

	return &Session{
		cfg:       cfg,
		transport: transport,
		logger:    config.Logger.With("device", config.DeviceID),
	}, nil
}

// Commands returns the command aliases the grammar defines, sorted.
func (s *Session) Commands() []string {
	commands := make([]string, 0, len(s.cfg.Grammar.CommandList))
	for alias := range s.cfg.Grammar.CommandList {
		commands = append(commands, alias)
	}
	sort.Strings(commands)
	return commands
}

// Actions returns the action aliases valid for the given command, sorted.
// Returns ErrInvalidCommand if the grammar does not define the command.
func (s *Session) Actions(command string) ([]string, error) {
	actions := s.cfg.Grammar.Actions(command)
	if actions == nil {
		return nil, fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, command)
	}
	sort.Strings(actions)
	return actions, nil
}

// Execute runs one request/response cycle for the symbolic command and
// action: validate, handshake (if configured), send, wait, drain the
// reply, classify.
//
// The reply is read after a single fixed wait with no retry loop: a device
// slower than the grammar's wait_time yields a truncated or empty reply.
// An empty reply classifies as success, so fire-and-forget commands work
// as expected.
//
// Returns ErrInvalidCommand without touching the transport when the pair
// is not in the grammar. ErrCommandFailed and ErrCommandException report
// device-side rejection; both leave the session usable. No retries are
// performed.
func (s *Session) Execute(ctx context.Context, command, action string) (*Result, error) {
	if s.closed {
		return nil, ErrAlreadyClosed
	}

	request, err := encode(s.cfg.Grammar, command, action)
	if err != nil {
		return nil, err
	}

	if err := s.handshake(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("sending command", "command", command, "action", action, "request", request)
	if _, err := s.transport.Write([]byte(request)); err != nil {
		return nil, fmt.Errorf("write command %q: %w", request, err)
	}

	if err := sleep(ctx, s.cfg.Wait); err != nil {
		return nil, err
	}

	response, err := s.drain()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("received response", "command", command, "response", response)

	return classify(s.cfg.Grammar, response)
}

// Close releases the transport. The session cannot be reused afterwards.
func (s *Session) Close() error {
	if s.closed {
		return ErrAlreadyClosed
	}
	s.closed = true
	return s.transport.Close()
}

// handshake performs the grammar's preliminary exchange, when configured:
// send the handshake bytes, wait, read back exactly len(expect) bytes. A
// mismatch is advisory and logged at warn level; the exchange continues.
func (s *Session) handshake(ctx context.Context) error {
	h := s.cfg.Grammar.Handshake
	if h == nil {
		return nil
	}

	if _, err := s.transport.Write([]byte(h.Send)); err != nil {
		return fmt.Errorf("write handshake: %w", err)
	}
	if err := sleep(ctx, secondsToDuration(h.Wait)); err != nil {
		return err
	}

	// A transport read may return fewer bytes than requested, so keep
	// reading until the full expect string is in or the transport has
	// nothing more buffered. A short read must not leave the tail of the
	// expect string behind: the drain would prepend it to the command
	// reply and break exact known-responses matching.
	buf := make([]byte, len(h.Expect))
	read := 0
	for read < len(buf) {
		n, err := s.transport.Read(buf[read:])
		if err != nil {
			return fmt.Errorf("read handshake response: %w", err)
		}
		if n == 0 {
			break
		}
		read += n
	}
	if got := string(buf[:read]); got != h.Expect {
		s.logger.Warn("unexpected handshake response", "expect", h.Expect, "got", got)
	}
	return nil
}

// drain reads the buffered reply one byte at a time until the transport
// reports no more bytes available.
func (s *Session) drain() (string, error) {
	var response strings.Builder
	buf := make([]byte, 1)
	for {
		available, err := s.transport.BytesAvailable()
		if err != nil {
			return "", fmt.Errorf("query buffered bytes: %w", err)
		}
		if available <= 0 {
			return response.String(), nil
		}

		n, err := s.transport.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		response.Write(buf[:n])
	}
}

// sleep blocks for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
