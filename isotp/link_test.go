package isotp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"udsserver/uds"
)

type fakeClock struct{ ms uint32 }

func (c *fakeClock) NowMS() uint32 { return c.ms }

type fakeBus struct {
	tx []txFrame
}

type txFrame struct {
	arbID uint32
	data  []byte
}

func (b *fakeBus) CANTx(arbID uint32, data []byte) error {
	b.tx = append(b.tx, txFrame{arbID, append([]byte(nil), data...)})
	return nil
}

func (b *fakeBus) CANRxPoll() (uint32, []byte, bool) { return 0, nil, false }

func TestSingleFrameRoundTrip(t *testing.T) {
	bus := &fakeBus{}
	clock := &fakeClock{}
	link := New(0x7E8, bus, clock, 4095)

	payload := []byte{0x3E, 0x00}
	require.NoError(t, link.Send(payload))
	require.Len(t, bus.tx, 1)
	require.Equal(t, pciTypeSF<<4|byte(len(payload)), bus.tx[0].data[0])

	// feed the frame we just "transmitted" back into a receiving link
	rx := New(0x7E0, bus, clock, 4095)
	rx.OnFrame(bus.tx[0].data)
	msg, ok := rx.Receive()
	require.True(t, ok)
	require.Equal(t, payload, msg)
}

func TestMultiFrameRoundTrip(t *testing.T) {
	bus := &fakeBus{}
	clock := &fakeClock{}
	tx := New(0x7E8, bus, clock, 4095)
	rx := New(0x7E0, bus, clock, 4095)

	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i)
	}

	require.NoError(t, tx.Send(payload))
	require.Len(t, bus.tx, 1) // first frame only, awaiting flow control

	rx.OnFrame(bus.tx[0].data)
	require.Len(t, bus.tx, 2) // rx answered with a flow-control frame
	_, ok := rx.Receive()
	require.False(t, ok, "reassembly isn't complete yet")

	tx.OnFrame(bus.tx[1].data) // tx consumes the flow control frame
	for tx.SendStatus() == uds.LinkInProgress {
		tx.Poll()
		if len(bus.tx) > 0 {
			last := bus.tx[len(bus.tx)-1]
			rx.OnFrame(last.data)
		}
		clock.ms++
	}

	msg, ok := rx.Receive()
	require.True(t, ok)
	require.Equal(t, payload, msg)
}

func TestMessageTooLongRejected(t *testing.T) {
	bus := &fakeBus{}
	clock := &fakeClock{}
	link := New(0x7E8, bus, clock, 10)

	err := link.Send(make([]byte, 11))
	require.ErrorIs(t, err, ErrMessageTooLong)
}

func TestSendWhileBusyRejected(t *testing.T) {
	bus := &fakeBus{}
	clock := &fakeClock{}
	link := New(0x7E8, bus, clock, 4095)

	require.NoError(t, link.Send(make([]byte, 20)))
	require.Equal(t, uds.LinkInProgress, link.SendStatus())
	require.ErrorIs(t, link.Send(make([]byte, 5)), ErrLinkBusy)
}
