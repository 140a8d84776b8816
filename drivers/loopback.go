package drivers

// LoopbackBus is an in-memory uds.Bus with no goroutines: CANTx on one
// end appends to a queue the paired end drains on CANRxPoll. Used by
// the demo command when no serial adapter is attached.
type LoopbackBus struct {
	inbox []frame
	peer  *LoopbackBus
}

type frame struct {
	arbID uint32
	data  []byte
}

// NewLoopbackPair returns two buses wired to each other: anything sent
// on one arrives on the other's CANRxPoll.
func NewLoopbackPair() (a, b *LoopbackBus) {
	a = &LoopbackBus{}
	b = &LoopbackBus{}
	a.peer = b
	b.peer = a
	return a, b
}

func (l *LoopbackBus) CANTx(arbID uint32, data []byte) error {
	l.peer.inbox = append(l.peer.inbox, frame{arbID: arbID, data: append([]byte(nil), data...)})
	return nil
}

func (l *LoopbackBus) CANRxPoll() (arbID uint32, data []byte, ok bool) {
	if len(l.inbox) == 0 {
		return 0, nil, false
	}
	f := l.inbox[0]
	l.inbox = l.inbox[1:]
	return f.arbID, f.data, true
}
