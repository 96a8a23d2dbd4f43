package device

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"time"

	"go.bug.st/serial"

	"github.com/beamctl/beamctl/grammar"
)

// Registry provides grammars by device id. *grammar.Registry satisfies it.
type Registry interface {
	Grammar(deviceID string) (*grammar.Grammar, bool)
}

// SerialSettings are the resolved transport settings for one session.
type SerialSettings struct {
	// Port is the device name of the serial port (e.g. "/dev/ttyUSB0").
	Port string
	// Mode carries baud rate, data bits, parity and stop bits.
	Mode serial.Mode
	// ReadTimeout bounds a single blocking read on the port.
	ReadTimeout time.Duration
}

// EffectiveConfig is the result of merging a device grammar with the
// caller's transport overrides. It is computed once per session.
type EffectiveConfig struct {
	// Grammar is the command vocabulary and response rules in effect.
	Grammar *grammar.Grammar
	// Settings are the final transport settings, overrides applied.
	Settings SerialSettings
	// Wait is the delay between sending a request and reading the reply.
	Wait time.Duration
	// Ignored lists recognized settings the transport cannot apply
	// (flow-control flags), sorted.
	Ignored []string
}

// recognizedSettings is the set of serial setting names the transport
// layer understands. A grammar or override key outside this set fails
// resolution with ErrInvalidConfig.
var recognizedSettings = map[string]struct{}{
	"port":     {},
	"baudrate": {},
	"bytesize": {},
	"parity":   {},
	"stopbits": {},
	"timeout":  {},
	"xonxoff":  {},
	"rtscts":   {},
	"dsrdtr":   {},
}

// flowControlSettings are accepted so existing grammar documents keep
// loading, but the serial port has no flow-control knob to apply them to.
// They are reported via EffectiveConfig.Ignored and logged at session
// construction.
var flowControlSettings = map[string]struct{}{
	"xonxoff": {},
	"rtscts":  {},
	"dsrdtr":  {},
}

// Enumeration tables for the settings that map onto fixed serial port
// constants. A value absent from its table fails resolution.
var (
	byteSizes = map[int]int{
		5: 5,
		6: 6,
		7: 7,
		8: 8,
	}
	parities = map[string]serial.Parity{
		"none":  serial.NoParity,
		"even":  serial.EvenParity,
		"odd":   serial.OddParity,
		"mark":  serial.MarkParity,
		"space": serial.SpaceParity,
	}
	stopBits = map[string]serial.StopBits{
		"1":   serial.OneStopBit,
		"1.5": serial.OnePointFiveStopBits,
		"2":   serial.TwoStopBits,
	}
)

// resolve merges the grammar for deviceID with the caller-supplied
// transport overrides and validates the result. Overrides replace
// same-named keys from the grammar's serial section wholesale.
//
// resolve is pure: it does not open the transport.
func resolve(reg Registry, deviceID string, overrides map[string]any) (*EffectiveConfig, error) {
	g, ok := reg.Grammar(deviceID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDeviceConfigMissing, deviceID)
	}

	if g.Serial == nil {
		return nil, fmt.Errorf("%w: grammar for %q has no serial section", ErrInvalidConfig, deviceID)
	}
	if len(g.CommandList) == 0 {
		return nil, fmt.Errorf("%w: grammar for %q defines no commands", ErrInvalidConfig, deviceID)
	}

	merged := maps.Clone(g.Serial)
	for key, value := range overrides {
		merged[key] = value
	}

	var settings SerialSettings
	var ignored []string
	for key, value := range merged {
		if _, ok := recognizedSettings[key]; !ok {
			return nil, fmt.Errorf("%w: unrecognized serial setting %q", ErrInvalidConfig, key)
		}

		if _, ok := flowControlSettings[key]; ok {
			if _, ok := value.(bool); !ok {
				return nil, settingError(value, key)
			}
			ignored = append(ignored, key)
			continue
		}

		switch key {
		case "port":
			s, ok := value.(string)
			if !ok {
				return nil, settingError(value, key)
			}
			settings.Port = s

		case "baudrate":
			n, ok := asInt(value)
			if !ok || n <= 0 {
				return nil, settingError(value, key)
			}
			settings.Mode.BaudRate = n

		case "bytesize":
			n, ok := asInt(value)
			if !ok {
				return nil, settingError(value, key)
			}
			bits, ok := byteSizes[n]
			if !ok {
				return nil, settingError(value, key)
			}
			settings.Mode.DataBits = bits

		case "parity":
			s, ok := value.(string)
			if !ok {
				return nil, settingError(value, key)
			}
			parity, ok := parities[s]
			if !ok {
				return nil, settingError(value, key)
			}
			settings.Mode.Parity = parity

		case "stopbits":
			f, ok := asFloat(value)
			if !ok {
				return nil, settingError(value, key)
			}
			bits, ok := stopBits[strconv.FormatFloat(f, 'f', -1, 64)]
			if !ok {
				return nil, settingError(value, key)
			}
			settings.Mode.StopBits = bits

		case "timeout":
			f, ok := asFloat(value)
			if !ok || f < 0 {
				return nil, settingError(value, key)
			}
			settings.ReadTimeout = secondsToDuration(f)
		}
	}

	wait := g.WaitTime
	if wait <= 0 {
		wait = 1
	}
	sort.Strings(ignored)

	return &EffectiveConfig{
		Grammar:  g,
		Settings: settings,
		Wait:     secondsToDuration(wait),
		Ignored:  ignored,
	}, nil
}

func settingError(value any, key string) error {
	return fmt.Errorf("%w: serial setting %v for key %q is not recognized", ErrInvalidConfig, value, key)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// asInt coerces the numeric types the YAML and JSON decoders produce.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
