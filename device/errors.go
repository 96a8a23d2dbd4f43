package device

import "errors"

var (
	// ErrDeviceConfigMissing is returned when the requested device id has
	// no grammar in the registry.
	//
	// This is fatal to session construction. Check that a grammar document
	// for the device exists in the grammar directory.
	ErrDeviceConfigMissing = errors.New("no grammar for device")

	// ErrInvalidConfig is returned when a grammar is structurally
	// incomplete (missing serial section, empty command list) or
	// references transport settings or values the transport layer does
	// not recognize.
	//
	// This is fatal to session construction. The wrapped message names the
	// offending key and value.
	ErrInvalidConfig = errors.New("invalid device config")

	// ErrInvalidCommand is returned when the caller requests a command the
	// grammar does not define, or an action that is not valid for that
	// command. The session remains usable.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrCommandFailed is returned when the device reply indicates a
	// rejected or invalid state transition, or an unknown reply under
	// known-responses classification. Fails that call only.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandException is returned when the device reply indicates an
	// internal device-side fault. Fails that call only.
	ErrCommandException = errors.New("command caused a device exception")

	// ErrNoDialer is returned when a Session is constructed without a
	// Dialer.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNoRegistry is returned when a Session is constructed without a
	// grammar registry.
	ErrNoRegistry = errors.New("no grammar registry configured")

	// ErrNoDeviceID is returned when a Session is constructed without a
	// device id.
	ErrNoDeviceID = errors.New("no device id configured")

	// ErrAlreadyClosed is returned when Close is called on a Session that
	// has already been closed, or a command is executed after Close.
	ErrAlreadyClosed = errors.New("session already closed")
)
