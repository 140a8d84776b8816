package uds

// Callback function types for every optional, domain-specific service.
// A nil field in Callbacks means the corresponding SID resolves to
// kServiceNotSupported — the core carries no default behavior for any
// of these; they are the "out of scope" collaborators named in the
// engine's external-interfaces boundary.
type (
	// SessionControlFunc is asked to approve or reject a session change.
	// A rejection should return a non-positive ResponseCode (typically
	// kConditionsNotCorrect).
	SessionControlFunc func(status *Status, sessionType byte) ResponseCode

	// ECUResetFunc performs (or schedules) the reset. powerDownTime is
	// only included in the response when resetType is
	// kEnableRapidPowerShutDown.
	ECUResetFunc func(status *Status, resetType byte) (powerDownTime byte, code ResponseCode)

	// RDBIFunc resolves one data identifier to its current value.
	RDBIFunc func(status *Status, did uint16) (data []byte, code ResponseCode)

	// WDBIFunc writes a value to one data identifier.
	WDBIFunc func(status *Status, did uint16, data []byte) ResponseCode

	// GenerateSeedFunc produces a security-access seed for a level. Per
	// ISO 14229-1, it must return an all-zero seed when the level is
	// already unlocked, and a non-zero seed otherwise — the core does
	// not enforce this, it is a contract on the callback.
	GenerateSeedFunc func(status *Status, level byte, in []byte) (seed []byte, code ResponseCode)

	// ValidateKeyFunc checks a key against the seed most recently
	// issued for level. On success, the SecurityAccess handler sets
	// status.SecurityLevel to level.
	ValidateKeyFunc func(status *Status, level byte, key []byte) ResponseCode

	CommunicationControlFunc func(status *Status, controlType byte, communicationType byte) ResponseCode

	// RoutineControlFunc runs, stops, or polls a routine. statusRecord
	// is appended to the positive response verbatim.
	RoutineControlFunc func(status *Status, controlType byte, routineID uint16, optionRecord []byte) (statusRecord []byte, code ResponseCode)

	// RequestDownloadFunc opens a transfer session. On success it must
	// return both callbacks non-nil and maxBlockLen >= 3.
	RequestDownloadFunc func(status *Status, address MemoryAddress, size uint32, dataFormatID byte) (onTransfer TransferDataFunc, onExit TransferExitFunc, maxBlockLen uint16, code ResponseCode)

	// TransferDataFunc consumes one block of a download in progress.
	// Returning kRequestCorrectlyReceivedResponsePending defers the
	// final answer to a later Poll.
	TransferDataFunc func(status *Status, payload []byte) ResponseCode

	// TransferExitFunc finalizes a download. It writes at most len(out)
	// bytes into out and returns how many it used.
	TransferExitFunc func(status *Status, out []byte) (n int, code ResponseCode)

	// SessionTimeoutFunc fires once when S3 expires. Side-effect only.
	SessionTimeoutFunc func(status *Status)
)

// Callbacks is the capability set a deployment installs at construction.
// Every field is optional; a nil field disables its SID. There is no
// field for ControlDTCSetting: per §4.3 it has no user callback at all,
// the handler always answers by itself.
type Callbacks struct {
	SessionControl       SessionControlFunc
	ECUReset             ECUResetFunc
	RDBI                 RDBIFunc
	WDBI                 WDBIFunc
	GenerateSeed         GenerateSeedFunc
	ValidateKey          ValidateKeyFunc
	CommunicationControl CommunicationControlFunc
	RoutineControl       RoutineControlFunc
	RequestDownload      RequestDownloadFunc
	SessionTimeout       SessionTimeoutFunc
}
