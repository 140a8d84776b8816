package uds

// TransferSession is the download state machine opened by RequestDownload
// (0x34), fed by TransferData (0x36), and closed by RequestTransferExit
// (0x37). At most one exists at a time on a Server.
type TransferSession struct {
	MemoryAddress    MemoryAddress
	RequestedSize    uint32
	BytesTransferred uint32
	BlockSequence    uint8
	OnTransfer       TransferDataFunc
	OnExit           TransferExitFunc
}

// MemoryAddress is the opaque address token carried from a RequestDownload
// to the installed transfer callbacks. The core performs no pointer
// arithmetic on it; it is whatever the 0x34 request's address bytes
// decoded to.
type MemoryAddress uint64

func (s *TransferSession) remaining() uint32 {
	return s.RequestedSize - s.BytesTransferred
}

func (s *TransferSession) nextBlockSequence() {
	s.BlockSequence++ // intentional 8-bit wraparound, 0xFF -> 0x00
}
