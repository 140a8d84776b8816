package uds

import (
	"fmt"

	"udsserver/logging"
)

// LinkStatus reports whether a Link still has an outgoing message queued.
type LinkStatus int

const (
	LinkIdle LinkStatus = iota
	LinkInProgress
)

// Link is the segmentation transport beneath UDS: it reassembles whole
// request messages out of bus frames and re-segments whole response
// messages back into frames. The core treats it as a reliable datagram
// channel and never looks inside a frame itself.
type Link interface {
	OnFrame(data []byte)
	Poll()
	Send(data []byte) error
	Receive() (data []byte, ok bool)
	SendStatus() LinkStatus
}

// Bus is the underlying CAN transceiver.
type Bus interface {
	CANTx(arbID uint32, data []byte) error
	CANRxPoll() (arbID uint32, data []byte, ok bool)
}

// Clock is a monotonic, possibly-wrapping millisecond counter.
type Clock interface {
	NowMS() uint32
}

// Config is the complete set of parameters a Server is built from.
// NewServer rejects a Config whose PhysLink, FuncLink, Bus, or Clock is
// nil, or whose P2Ms or S3Ms is zero; every other field may be left at
// its zero value.
type Config struct {
	PhysLink Link
	FuncLink Link

	PhysRecvID uint32
	FuncRecvID uint32
	SendID     uint32

	Bus   Bus
	Clock Clock

	P2Ms     uint32
	P2StarMs uint32
	S3Ms     uint32

	// TransportMTU bounds maxNumberOfBlockLength proposed by a
	// RequestDownload callback. Defaults to 4095 (the classic ISO-TP
	// single-message limit) when zero.
	TransportMTU uint16

	// ReservedSecurityLevels are sub-function values SecurityAccess
	// always rejects with kSubFunctionNotSupported, regardless of
	// whether a callback is installed. ISO 14229-1 leaves the table
	// implementation-defined; the zero value defaults to
	// {0x00, 0x7E, 0x7F}.
	ReservedSecurityLevels []byte

	Callbacks Callbacks
	Logger    *logging.Logger
}

func (c *Config) validate() error {
	if c.PhysLink == nil {
		return fmt.Errorf("uds: Config.PhysLink is required")
	}
	if c.FuncLink == nil {
		return fmt.Errorf("uds: Config.FuncLink is required")
	}
	if c.Bus == nil {
		return fmt.Errorf("uds: Config.Bus is required")
	}
	if c.Clock == nil {
		return fmt.Errorf("uds: Config.Clock is required")
	}
	if c.P2Ms == 0 {
		return fmt.Errorf("uds: Config.P2Ms must be nonzero")
	}
	if c.S3Ms == 0 {
		return fmt.Errorf("uds: Config.S3Ms must be nonzero")
	}
	return nil
}

func (c *Config) reservedSecurityLevels() []byte {
	if c.ReservedSecurityLevels != nil {
		return c.ReservedSecurityLevels
	}
	return []byte{0x00, 0x7E, 0x7F}
}

func (c *Config) transportMTU() uint16 {
	if c.TransportMTU == 0 {
		return 4095
	}
	return c.TransportMTU
}
