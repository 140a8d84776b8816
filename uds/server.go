package uds

import (
	"fmt"
	"time"
)

// TimeAfter is the wrap-safe comparison used for every timer in the
// engine: true when a is strictly later than b, even across a uint32
// wraparound of the underlying millisecond counter.
func TimeAfter(a, b uint32) bool {
	return int32(a-b) > 0
}

// SystemClock is the default Clock, backed by the host's wall clock.
type SystemClock struct{}

func (SystemClock) NowMS() uint32 {
	return uint32(time.Now().UnixMilli())
}

// Server is the single-threaded UDS engine. It owns no goroutines and
// blocks on nothing; Poll must be called repeatedly by the host.
type Server struct {
	cfg    Config
	status Status

	p2Timer   uint32
	s3Timeout uint32

	notReadyToReceive bool
	ecuResetScheduled bool

	transfer *TransferSession

	respBuf []byte

	pendingActive     bool
	pendingBuf        []byte
	pendingLen        int
	pendingAddressing AddressingScheme
}

// NewServer validates cfg and builds a Server ready for Poll. The first
// call to Poll accepts a request immediately: p2Timer is seeded in the
// past so the initial p2 gate never blocks.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	now := cfg.Clock.NowMS()
	mtu := cfg.transportMTU()
	return &Server{
		cfg:        cfg,
		status:     newStatus(),
		p2Timer:    now - cfg.P2Ms,
		respBuf:    make([]byte, mtu),
		pendingBuf: make([]byte, mtu),
	}, nil
}

// Status returns a snapshot of the server's protocol state.
func (s *Server) Status() Status {
	return s.status
}

// TransferInProgress reports whether a download session is currently open.
func (s *Server) TransferInProgress() bool {
	return s.transfer != nil
}

func (s *Server) refreshS3() {
	s.s3Timeout = s.cfg.Clock.NowMS() + s.cfg.S3Ms
}

func (s *Server) log(format string, args ...interface{}) {
	if s.cfg.Logger == nil {
		return
	}
	s.cfg.Logger.WriteToLog(fmt.Sprintf(format, args...), 0)
}

// Poll drives the engine through one iteration of §4.6's ordered steps.
// It dispatches at most one request and, if one was outstanding behind
// a response-pending, resumes at most one deferred exchange.
func (s *Server) Poll() {
	now := s.cfg.Clock.NowMS()

	if arbID, data, ok := s.cfg.Bus.CANRxPoll(); ok {
		switch arbID {
		case s.cfg.PhysRecvID:
			s.cfg.PhysLink.OnFrame(data)
		case s.cfg.FuncRecvID:
			s.cfg.FuncLink.OnFrame(data)
		}
	}
	s.cfg.PhysLink.Poll()
	s.cfg.FuncLink.Poll()

	if s.status.SessionType != SessionDefault && TimeAfter(now, s.s3Timeout) {
		s.status.SessionType = SessionDefault
		if cb := s.cfg.Callbacks.SessionTimeout; cb != nil {
			cb(&s.status)
		}
	}

	if s.status.RCRRP && s.pendingActive && s.cfg.PhysLink.SendStatus() == LinkIdle {
		out := s.dispatch(s.pendingBuf[:s.pendingLen], s.pendingAddressing)
		s.pendingActive = s.status.RCRRP
		s.notReadyToReceive = s.status.RCRRP || s.ecuResetScheduled
		s.emit(out, s.pendingAddressing)
		return
	}

	if s.notReadyToReceive {
		return
	}

	if !TimeAfter(now, s.p2Timer) {
		return
	}

	if data, ok := s.cfg.PhysLink.Receive(); ok {
		s.handleIncoming(data, Physical, now)
		return
	}
	if data, ok := s.cfg.FuncLink.Receive(); ok {
		s.handleIncoming(data, Functional, now)
		return
	}
}

func (s *Server) handleIncoming(data []byte, addressing AddressingScheme, now uint32) {
	out := s.dispatch(data, addressing)
	s.p2Timer = now + s.cfg.P2Ms

	if s.status.RCRRP {
		s.notReadyToReceive = true
		s.pendingActive = true
		s.pendingLen = copy(s.pendingBuf, data)
		s.pendingAddressing = addressing
	}
	s.emit(out, addressing)
}

func (s *Server) emit(out []byte, addressing AddressingScheme) {
	if len(out) == 0 {
		return
	}
	link := s.cfg.PhysLink
	if addressing == Functional {
		link = s.cfg.FuncLink
	}
	if err := link.Send(out); err != nil {
		s.log("uds: send failed: %s", err)
		return
	}
	s.log("uds: tx % X", out)
}
