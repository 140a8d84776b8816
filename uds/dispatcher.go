package uds

// functionallySuppressed is the response-code set that, on a
// functionally-addressed request, means "stay silent" (ISO 14229-1
// §7.5.5): an ECU that cannot honor a broadcast request must not answer
// at all, since other ECUs on the bus may legitimately respond.
var functionallySuppressed = map[ResponseCode]bool{
	NRCServiceNotSupported:                    true,
	NRCSubFunctionNotSupported:                true,
	NRCServiceNotSupportedInActiveSession:     true,
	NRCSubFunctionNotSupportedInActiveSession: true,
	NRCRequestOutOfRange:                      true,
}

// dispatch implements §4.5: look up the handler, validate minimum
// length for sub-functioned SIDs, invoke it, then apply the standard's
// suppression rules to whatever it wrote into resp.
func (s *Server) dispatch(buf []byte, addressing AddressingScheme) []byte {
	req := &Request{buf: buf, addressing: addressing}
	resp := newResponse(s.respBuf)

	sid := req.SID()
	handler, ok := registry[sid]
	if !ok {
		code := negative(resp, sid, NRCServiceNotSupported)
		return s.finalize(req, resp, code)
	}

	var code ResponseCode
	if sid.isSubFunctioned() && len(buf) < 2 {
		code = negative(resp, sid, NRCIncorrectMessageLengthOrInvalidFormat)
	} else {
		code = handler(s, req, resp)
	}

	return s.finalize(req, resp, code)
}

// finalize applies dispatcher step 3. wasPending captures status.RCRRP
// as it stood when this dispatch began: consulting it here (rather than
// unconditionally suppressing) is what stops a functional exchange that
// already sent a 0x78 from going silent on its real answer.
func (s *Server) finalize(req *Request, resp *Response, code ResponseCode) []byte {
	wasPending := s.status.RCRRP
	s.status.RCRRP = code == NRCRequestCorrectlyReceivedResponsePending

	if req.Addressing() == Functional && functionallySuppressed[code] && !wasPending {
		resp.suppress()
		return resp.Bytes()
	}
	if req.SID().isSubFunctioned() && code.isPositive() && req.suppressPositive() {
		resp.suppress()
		return resp.Bytes()
	}
	return resp.Bytes()
}
