package ecu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"udsserver/uds"
)

func TestRDBIKnownAndUnknownDID(t *testing.T) {
	sim := New(make([]byte, 16), nil)

	data, code := sim.rdbi(&uds.Status{}, 0xF190)
	require.Equal(t, uds.NRCPositiveResponse, code)
	require.Equal(t, []byte("1HGBH41JXMN109186"), data)

	_, code = sim.rdbi(&uds.Status{}, 0x1234)
	require.Equal(t, uds.NRCRequestOutOfRange, code)
}

func TestWDBIThenRDBIRoundTrip(t *testing.T) {
	sim := New(make([]byte, 16), nil)
	status := &uds.Status{}

	code := sim.wdbi(status, 0xABCD, []byte("hello"))
	require.Equal(t, uds.NRCPositiveResponse, code)

	data, code := sim.rdbi(status, 0xABCD)
	require.Equal(t, uds.NRCPositiveResponse, code)
	require.Equal(t, []byte("hello"), data)
}

func TestSecurityAccessSeedKeyRoundTrip(t *testing.T) {
	sim := New(make([]byte, 16), nil)
	status := &uds.Status{}

	seed, code := sim.generateSeed(status, 0x01, nil)
	require.Equal(t, uds.NRCPositiveResponse, code)
	require.NotEmpty(t, seed)

	key, err := sim.deriveKey(seed)
	require.NoError(t, err)

	code = sim.validateKey(status, 0x01, key)
	require.Equal(t, uds.NRCPositiveResponse, code)
}

func TestSecurityAccessWrongKeyRejected(t *testing.T) {
	sim := New(make([]byte, 16), nil)
	status := &uds.Status{}

	_, code := sim.generateSeed(status, 0x01, nil)
	require.Equal(t, uds.NRCPositiveResponse, code)

	code = sim.validateKey(status, 0x01, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.Equal(t, uds.NRCInvalidKey, code)
}

func TestGenerateSeedAllZeroWhenAlreadyUnlocked(t *testing.T) {
	sim := New(make([]byte, 16), nil)
	status := &uds.Status{SecurityLevel: 0x01}

	seed, code := sim.generateSeed(status, 0x01, nil)
	require.Equal(t, uds.NRCPositiveResponse, code)
	require.Equal(t, make([]byte, 4), seed)
}

func TestRequestDownloadAccumulatesAndValidatesOnExit(t *testing.T) {
	sim := New(make([]byte, 16), nil)
	status := &uds.Status{}

	onTransfer, onExit, maxBlock, code := sim.requestDownload(status, uds.MemoryAddress(0x1000), 32, 0x00)
	require.Equal(t, uds.NRCPositiveResponse, code)
	require.GreaterOrEqual(t, maxBlock, uint16(3))

	require.Equal(t, uds.NRCPositiveResponse, onTransfer(status, []byte("not really intel hex")))

	out := make([]byte, 8)
	n, code := onExit(status, out)
	require.Equal(t, uds.NRCPositiveResponse, code)
	require.Equal(t, 1, n)
}

func TestDTCLabelKnownAndUnknown(t *testing.T) {
	require.Equal(t, "0300: Random/Multiple Cylinder Misfire Detected", DTCLabel("0300"))
	require.Equal(t, "9999", DTCLabel("9999"))
}
