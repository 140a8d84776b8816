package uds

import "fmt"

// SessionType identifies the active diagnostic session (ISO 14229-1 Table 19).
type SessionType byte

const (
	SessionDefault            SessionType = 0x01
	SessionProgramming        SessionType = 0x02
	SessionExtendedDiagnostic SessionType = 0x03
	SessionSafetySystem       SessionType = 0x04
)

func (s SessionType) String() string {
	switch s {
	case SessionDefault:
		return "Default"
	case SessionProgramming:
		return "Programming"
	case SessionExtendedDiagnostic:
		return "Extended"
	case SessionSafetySystem:
		return "SafetySystem"
	default:
		return fmt.Sprintf("0x%02X", byte(s))
	}
}

// AddressingScheme distinguishes a request sent only to this ECU from one
// broadcast to every ECU on the bus.
type AddressingScheme int

const (
	Physical AddressingScheme = iota
	Functional
)

// Status is the server's protocol state, readable (and in places
// writable) by user service callbacks.
type Status struct {
	SessionType   SessionType
	SecurityLevel byte
	RCRRP         bool
}

func newStatus() Status {
	return Status{SessionType: SessionDefault, SecurityLevel: 0}
}
