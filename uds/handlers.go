package uds

// handlerFunc is one entry in the service registry. Every handler
// follows the same contract: check the callback exists, parse inputs,
// call the callback, encode the response, and return the ResponseCode
// that the dispatcher uses to decide suppression. A handler that writes
// a negative response also returns that response's code; a handler
// that writes a positive response returns NRCPositiveResponse.
type handlerFunc func(s *Server, req *Request, resp *Response) ResponseCode

var registry = map[SID]handlerFunc{
	SIDDiagnosticSessionControl: handleDiagnosticSessionControl,
	SIDECUReset:                 handleECUReset,
	SIDReadDataByIdentifier:     handleReadDataByIdentifier,
	SIDSecurityAccess:           handleSecurityAccess,
	SIDCommunicationControl:     handleCommunicationControl,
	SIDWriteDataByIdentifier:    handleWriteDataByIdentifier,
	SIDRoutineControl:           handleRoutineControl,
	SIDRequestDownload:          handleRequestDownload,
	SIDTransferData:             handleTransferData,
	SIDRequestTransferExit:      handleRequestTransferExit,
	SIDTesterPresent:            handleTesterPresent,
	SIDControlDTCSetting:        handleControlDTCSetting,
}

func negative(resp *Response, sid SID, code ResponseCode) ResponseCode {
	resp.setNegative(sid, code)
	return code
}

func handleDiagnosticSessionControl(s *Server, req *Request, resp *Response) ResponseCode {
	cb := s.cfg.Callbacks.SessionControl
	if cb == nil {
		return negative(resp, req.SID(), NRCServiceNotSupported)
	}

	sessionType := req.RawSubFunction() & 0x4F // keeps bit 6; see the handler's own masking rules
	code := cb(&s.status, sessionType)
	if code != NRCPositiveResponse {
		return negative(resp, req.SID(), code)
	}

	s.status.SessionType = SessionType(sessionType)
	if s.status.SessionType != SessionDefault {
		s.refreshS3()
	}

	resp.setPositiveSID(req.SID())
	resp.WriteByte(sessionType)
	resp.WriteUint16(uint16(s.cfg.P2Ms))
	resp.WriteUint16(uint16(s.cfg.P2StarMs / 10))
	return NRCPositiveResponse
}

func handleECUReset(s *Server, req *Request, resp *Response) ResponseCode {
	cb := s.cfg.Callbacks.ECUReset
	if cb == nil {
		return negative(resp, req.SID(), NRCServiceNotSupported)
	}

	resetType := req.RawSubFunction() & 0x3F
	powerDownTime, code := cb(&s.status, resetType)
	if code != NRCPositiveResponse {
		return negative(resp, req.SID(), code)
	}

	s.notReadyToReceive = true
	s.ecuResetScheduled = true

	resp.setPositiveSID(req.SID())
	resp.WriteByte(resetType)
	if resetType == ResetEnableRapidPowerShutDown {
		resp.WriteByte(powerDownTime)
	}
	return NRCPositiveResponse
}

func handleReadDataByIdentifier(s *Server, req *Request, resp *Response) ResponseCode {
	body := req.Data()
	if len(body) == 0 || len(body)%2 != 0 {
		return negative(resp, req.SID(), NRCIncorrectMessageLengthOrInvalidFormat)
	}
	cb := s.cfg.Callbacks.RDBI
	if cb == nil {
		return negative(resp, req.SID(), NRCServiceNotSupported)
	}

	resp.setPositiveSID(req.SID())
	for i := 0; i < len(body); i += 2 {
		did := uint16(body[i])<<8 | uint16(body[i+1])
		data, code := cb(&s.status, did)
		if code != NRCPositiveResponse {
			return negative(resp, req.SID(), code)
		}
		if !resp.WriteUint16(did) || !resp.Write(data) {
			return negative(resp, req.SID(), NRCResponseTooLong)
		}
	}
	return NRCPositiveResponse
}

func handleSecurityAccess(s *Server, req *Request, resp *Response) ResponseCode {
	sid := req.SID()
	subFn := req.RawSubFunction() & 0x7F
	for _, reserved := range s.cfg.reservedSecurityLevels() {
		if subFn == reserved {
			return negative(resp, sid, NRCSubFunctionNotSupported)
		}
	}

	if subFn%2 == 1 {
		// requestSeed(level = subFn)
		cb := s.cfg.Callbacks.GenerateSeed
		if cb == nil {
			return negative(resp, sid, NRCServiceNotSupported)
		}
		seed, code := cb(&s.status, subFn, req.SubFunctionData())
		if code != NRCPositiveResponse {
			return negative(resp, sid, code)
		}
		if len(seed) == 0 {
			return negative(resp, sid, NRCGeneralProgrammingFailure)
		}
		resp.setPositiveSID(sid)
		resp.WriteByte(subFn)
		if !resp.Write(seed) {
			return negative(resp, sid, NRCGeneralProgrammingFailure)
		}
		return NRCPositiveResponse
	}

	// sendKey(level = subFn-1)
	cb := s.cfg.Callbacks.ValidateKey
	if cb == nil {
		return negative(resp, sid, NRCServiceNotSupported)
	}
	level := subFn - 1
	code := cb(&s.status, level, req.SubFunctionData())
	if code != NRCPositiveResponse {
		return negative(resp, sid, code)
	}
	s.status.SecurityLevel = level
	resp.setPositiveSID(sid)
	resp.WriteByte(subFn)
	return NRCPositiveResponse
}

func handleCommunicationControl(s *Server, req *Request, resp *Response) ResponseCode {
	sid := req.SID()
	data := req.SubFunctionData()
	if len(data) == 0 {
		return negative(resp, sid, NRCIncorrectMessageLengthOrInvalidFormat)
	}
	cb := s.cfg.Callbacks.CommunicationControl
	if cb == nil {
		return negative(resp, sid, NRCServiceNotSupported)
	}

	controlType := req.RawSubFunction() & 0x7F
	code := cb(&s.status, controlType, data[0])
	if code != NRCPositiveResponse {
		return negative(resp, sid, code)
	}
	resp.setPositiveSID(sid)
	resp.WriteByte(controlType)
	return NRCPositiveResponse
}

func handleWriteDataByIdentifier(s *Server, req *Request, resp *Response) ResponseCode {
	sid := req.SID()
	body := req.Data()
	if len(body) < 2 {
		return negative(resp, sid, NRCIncorrectMessageLengthOrInvalidFormat)
	}
	cb := s.cfg.Callbacks.WDBI
	if cb == nil {
		return negative(resp, sid, NRCServiceNotSupported)
	}

	did := uint16(body[0])<<8 | uint16(body[1])
	code := cb(&s.status, did, body[2:])
	if code != NRCPositiveResponse {
		return negative(resp, sid, code)
	}
	resp.setPositiveSID(sid)
	resp.WriteUint16(did)
	return NRCPositiveResponse
}

func handleRoutineControl(s *Server, req *Request, resp *Response) ResponseCode {
	sid := req.SID()
	payload := req.SubFunctionData()
	if len(payload) < 2 {
		return negative(resp, sid, NRCIncorrectMessageLengthOrInvalidFormat)
	}

	controlType := req.RawSubFunction() & 0x7F
	switch controlType {
	case RoutineControlStart, RoutineControlStop, RoutineControlRequestResults:
	default:
		// Reference behavior; ISO 14229-1 arguably prefers
		// kSubFunctionNotSupported here. Left as-is pending clarification.
		return negative(resp, sid, NRCIncorrectMessageLengthOrInvalidFormat)
	}

	cb := s.cfg.Callbacks.RoutineControl
	if cb == nil {
		return negative(resp, sid, NRCServiceNotSupported)
	}

	routineID := uint16(payload[0])<<8 | uint16(payload[1])
	statusRecord, code := cb(&s.status, controlType, routineID, payload[2:])
	if code != NRCPositiveResponse {
		return negative(resp, sid, code)
	}

	resp.setPositiveSID(sid)
	resp.WriteByte(controlType)
	resp.WriteUint16(routineID)
	if !resp.Write(statusRecord) {
		return negative(resp, sid, NRCGeneralProgrammingFailure)
	}
	return NRCPositiveResponse
}

func handleRequestDownload(s *Server, req *Request, resp *Response) ResponseCode {
	sid := req.SID()
	if s.transfer != nil {
		return negative(resp, sid, NRCConditionsNotCorrect)
	}

	body := req.Data()
	if len(body) < 2 {
		return negative(resp, sid, NRCIncorrectMessageLengthOrInvalidFormat)
	}

	dataFormatID := body[0]
	alfid := body[1]
	memSizeLen := int(alfid >> 4)
	memAddrLen := int(alfid & 0x0F)
	if memSizeLen < 1 || memSizeLen > 8 || memAddrLen < 1 || memAddrLen > 8 {
		return negative(resp, sid, NRCRequestOutOfRange)
	}
	if len(body) < 2+memAddrLen+memSizeLen {
		return negative(resp, sid, NRCIncorrectMessageLengthOrInvalidFormat)
	}

	var address uint64
	for _, b := range body[2 : 2+memAddrLen] {
		address = address<<8 | uint64(b)
	}
	var size uint64
	for _, b := range body[2+memAddrLen : 2+memAddrLen+memSizeLen] {
		size = size<<8 | uint64(b)
	}

	cb := s.cfg.Callbacks.RequestDownload
	if cb == nil {
		return negative(resp, sid, NRCServiceNotSupported)
	}

	onTransfer, onExit, maxBlock, code := cb(&s.status, MemoryAddress(address), uint32(size), dataFormatID)
	if code != NRCPositiveResponse {
		return negative(resp, sid, code)
	}
	if onTransfer == nil || onExit == nil || maxBlock < 3 {
		return negative(resp, sid, NRCGeneralProgrammingFailure)
	}
	if mtu := s.cfg.transportMTU(); maxBlock > mtu {
		maxBlock = mtu
	}

	s.transfer = &TransferSession{
		MemoryAddress: MemoryAddress(address),
		RequestedSize: uint32(size),
		BlockSequence: 1,
		OnTransfer:    onTransfer,
		OnExit:        onExit,
	}

	resp.setPositiveSID(sid)
	resp.WriteByte(2 << 4) // lengthFormatIdentifier: one byte declaring a two-byte maxNumberOfBlockLength
	resp.WriteUint16(maxBlock)
	return NRCPositiveResponse
}

func handleTransferData(s *Server, req *Request, resp *Response) ResponseCode {
	sid := req.SID()
	if s.transfer == nil {
		return negative(resp, sid, NRCUploadDownloadNotAccepted)
	}

	body := req.Data()
	if len(body) < 1 {
		return negative(resp, sid, NRCIncorrectMessageLengthOrInvalidFormat)
	}
	counter := body[0]
	payload := body[1:]

	if !s.status.RCRRP {
		if counter != s.transfer.BlockSequence {
			s.transfer = nil
			return negative(resp, sid, NRCRequestSequenceError)
		}
		s.transfer.nextBlockSequence()
	}

	if uint32(len(payload)) > s.transfer.remaining() {
		s.transfer = nil
		return negative(resp, sid, NRCTransferDataSuspended)
	}

	code := s.transfer.OnTransfer(&s.status, payload)
	switch code {
	case NRCPositiveResponse:
		s.transfer.BytesTransferred += uint32(len(payload))
		resp.setPositiveSID(sid)
		resp.WriteByte(counter)
		return NRCPositiveResponse
	case NRCRequestCorrectlyReceivedResponsePending:
		return negative(resp, sid, code)
	default:
		s.transfer = nil
		return negative(resp, sid, code)
	}
}

func handleRequestTransferExit(s *Server, req *Request, resp *Response) ResponseCode {
	sid := req.SID()
	if s.transfer == nil {
		return negative(resp, sid, NRCUploadDownloadNotAccepted)
	}

	resp.setPositiveSID(sid)
	avail := resp.buf[resp.n:]
	n, code := s.transfer.OnExit(&s.status, avail)
	s.transfer = nil
	if code != NRCPositiveResponse {
		return negative(resp, sid, code)
	}
	if n < 0 || n > len(avail) {
		return negative(resp, sid, NRCGeneralProgrammingFailure)
	}
	resp.n += n
	return NRCPositiveResponse
}

func handleTesterPresent(s *Server, req *Request, resp *Response) ResponseCode {
	subFn := req.RawSubFunction() & 0x3F
	s.refreshS3()
	resp.setPositiveSID(req.SID())
	resp.WriteByte(subFn)
	return NRCPositiveResponse
}

func handleControlDTCSetting(s *Server, req *Request, resp *Response) ResponseCode {
	dtcSettingType := req.RawSubFunction() & 0x3F
	resp.setPositiveSID(req.SID())
	resp.WriteByte(dtcSettingType)
	return NRCPositiveResponse
}
