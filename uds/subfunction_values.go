package uds

// Sub-function values referenced directly by handler logic. Values that
// are purely informational (e.g. session-type labels for logging) live
// alongside their handler instead of a shared enum, matching how thin
// each handler's vocabulary is.
const (
	ResetEnableRapidPowerShutDown byte = 0x04

	RoutineControlStart          byte = 0x01
	RoutineControlStop           byte = 0x02
	RoutineControlRequestResults byte = 0x03
)
