package drivers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFrameStuffingRoundTrip exercises encodeFrame/consumeByte's
// unstuffing, stopping just short of completeFrame (which would write
// an ACK/NACK to the real port) and checking the recovered [id, dlc,
// payload, crc] bytes match what encodeFrame started from.
func TestFrameStuffingRoundTrip(t *testing.T) {
	b := &SerialBus{}
	payload := []byte{0x7E, 0x7F, 0x1B, 0x01, 0x02}

	encoded := b.encodeFrame(0x123, payload)
	require.Equal(t, byte(startMarker), encoded[0])
	require.Equal(t, byte(endMarker), encoded[len(encoded)-1])

	for _, c := range encoded[:len(encoded)-1] {
		b.consumeByte(c)
	}

	want := []byte{0x01, 0x23, byte(len(payload))}
	want = append(want, payload...)
	want = append(want, calculateCRC8(0x123, byte(len(payload)), payload))
	require.Equal(t, want, b.buf)
}

func TestCRC8DetectsCorruption(t *testing.T) {
	good := calculateCRC8(0x7E0, 3, []byte{0x01, 0x02, 0x03})
	bad := calculateCRC8(0x7E0, 3, []byte{0x01, 0x02, 0x04})
	require.NotEqual(t, good, bad)
}

func TestLoopbackPairDeliversAcrossEnds(t *testing.T) {
	a, b := NewLoopbackPair()

	require.NoError(t, a.CANTx(0x7E0, []byte{0x3E, 0x00}))
	arbID, data, ok := b.CANRxPoll()
	require.True(t, ok)
	require.Equal(t, uint32(0x7E0), arbID)
	require.Equal(t, []byte{0x3E, 0x00}, data)

	_, _, ok = b.CANRxPoll()
	require.False(t, ok, "queue should be drained")
}
