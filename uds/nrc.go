package uds

import "fmt"

// ResponseCode is a UDS Negative Response Code (ISO 14229-1 Table A.1).
// Handlers return it for both positive dispatch signalling
// (kPositiveResponse) and genuine negative responses.
type ResponseCode byte

const (
	NRCPositiveResponse                          ResponseCode = 0x00
	NRCGeneralReject                             ResponseCode = 0x10
	NRCServiceNotSupported                       ResponseCode = 0x11
	NRCSubFunctionNotSupported                   ResponseCode = 0x12
	NRCIncorrectMessageLengthOrInvalidFormat     ResponseCode = 0x13
	NRCResponseTooLong                           ResponseCode = 0x14
	NRCBusyRepeatRequest                         ResponseCode = 0x21
	NRCConditionsNotCorrect                      ResponseCode = 0x22
	NRCRequestSequenceError                      ResponseCode = 0x24
	NRCNoResponseFromSubnetComponent             ResponseCode = 0x25
	NRCFailurePreventsExecutionOfRequestedAction ResponseCode = 0x26
	NRCRequestOutOfRange                         ResponseCode = 0x31
	NRCSecurityAccessDenied                      ResponseCode = 0x33
	NRCInvalidKey                                ResponseCode = 0x35
	NRCExceededNumberOfAttempts                  ResponseCode = 0x36
	NRCRequiredTimeDelayNotExpired               ResponseCode = 0x37
	NRCUploadDownloadNotAccepted                 ResponseCode = 0x70
	NRCTransferDataSuspended                     ResponseCode = 0x71
	NRCGeneralProgrammingFailure                 ResponseCode = 0x72
	NRCWrongBlockSequenceCounter                 ResponseCode = 0x73
	NRCRequestCorrectlyReceivedResponsePending   ResponseCode = 0x78
	NRCSubFunctionNotSupportedInActiveSession    ResponseCode = 0x7E
	NRCServiceNotSupportedInActiveSession        ResponseCode = 0x7F
)

var nrcNames = map[ResponseCode]string{
	NRCGeneralReject:                             "General Reject",
	NRCServiceNotSupported:                       "Service Not Supported",
	NRCSubFunctionNotSupported:                   "SubFunction Not Supported",
	NRCIncorrectMessageLengthOrInvalidFormat:     "Incorrect Message Length or Invalid Format",
	NRCResponseTooLong:                           "Response Too Long",
	NRCBusyRepeatRequest:                         "Busy Repeat Request",
	NRCConditionsNotCorrect:                      "Conditions Not Correct",
	NRCRequestSequenceError:                      "Request Sequence Error",
	NRCNoResponseFromSubnetComponent:             "No Response From Subnet Component",
	NRCFailurePreventsExecutionOfRequestedAction: "Failure Prevents Execution of Requested Action",
	NRCRequestOutOfRange:                         "Request Out of Range",
	NRCSecurityAccessDenied:                      "Security Access Denied",
	NRCInvalidKey:                                "Invalid Key",
	NRCExceededNumberOfAttempts:                  "Exceeded Number of Attempts",
	NRCRequiredTimeDelayNotExpired:               "Required Time Delay Not Expired",
	NRCUploadDownloadNotAccepted:                 "Upload/Download Not Accepted",
	NRCTransferDataSuspended:                     "Transfer Data Suspended",
	NRCGeneralProgrammingFailure:                 "General Programming Failure",
	NRCWrongBlockSequenceCounter:                 "Wrong Block Sequence Counter",
	NRCRequestCorrectlyReceivedResponsePending:   "Request Correctly Received - Response Pending",
	NRCSubFunctionNotSupportedInActiveSession:    "SubFunction Not Supported in Active Session",
	NRCServiceNotSupportedInActiveSession:        "Service Not Supported in Active Session",
}

// Label returns a human-readable name for a response code, falling back
// to its hex value for anything outside the named table.
func (c ResponseCode) Label() string {
	if name, ok := nrcNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

func (c ResponseCode) isPositive() bool {
	return c == NRCPositiveResponse
}
