package uds

import "fmt"

// SID is a UDS Service Identifier, the first byte of a request.
type SID byte

const (
	SIDDiagnosticSessionControl       SID = 0x10
	SIDECUReset                       SID = 0x11
	SIDClearDiagnosticInformation     SID = 0x14
	SIDReadDTCInformation             SID = 0x19
	SIDReadDataByIdentifier           SID = 0x22
	SIDReadMemoryByAddress            SID = 0x23
	SIDReadScalingDataByIdentifier    SID = 0x24
	SIDSecurityAccess                 SID = 0x27
	SIDCommunicationControl           SID = 0x28
	SIDReadDataByPeriodicIdentifier   SID = 0x2A
	SIDDynamicallyDefineDataID        SID = 0x2C
	SIDWriteDataByIdentifier          SID = 0x2E
	SIDInputOutputControlByIdentifier SID = 0x2F
	SIDRoutineControl                SID = 0x31
	SIDRequestDownload                SID = 0x34
	SIDRequestUpload                  SID = 0x35
	SIDTransferData                   SID = 0x36
	SIDRequestTransferExit            SID = 0x37
	SIDRequestFileTransfer            SID = 0x38
	SIDWriteMemoryByAddress           SID = 0x3D
	SIDTesterPresent                  SID = 0x3E
	SIDAccessTimingParameter          SID = 0x83
	SIDSecuredDataTransmission        SID = 0x84
	SIDControlDTCSetting              SID = 0x85
	SIDResponseOnEvent                SID = 0x86
)

const (
	negativeResponseSID       byte = 0x7F
	positiveResponseSIDOffset byte = 0x40
	suppressPositiveRespBit   byte = 0x80
)

// subFunctioned is the set of SIDs where the byte following the SID is a
// sub-function (high bit = suppress-positive-response) rather than the
// first byte of service-specific payload.
var subFunctioned = map[SID]bool{
	SIDDiagnosticSessionControl: true,
	SIDECUReset:                 true,
	SIDReadDTCInformation:       true,
	SIDSecurityAccess:           true,
	SIDCommunicationControl:     true,
	SIDRoutineControl:           true,
	SIDTesterPresent:            true,
	SIDAccessTimingParameter:    true,
	SIDSecuredDataTransmission:  true,
	SIDControlDTCSetting:        true,
	SIDResponseOnEvent:          true,
}

func (s SID) isSubFunctioned() bool {
	return subFunctioned[s]
}

func (s SID) String() string {
	if name, ok := sidNames[s]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(s))
}

var sidNames = map[SID]string{
	SIDDiagnosticSessionControl:       "DiagnosticSessionControl",
	SIDECUReset:                       "ECUReset",
	SIDClearDiagnosticInformation:     "ClearDiagnosticInformation",
	SIDReadDTCInformation:             "ReadDTCInformation",
	SIDReadDataByIdentifier:           "ReadDataByIdentifier",
	SIDReadMemoryByAddress:            "ReadMemoryByAddress",
	SIDReadScalingDataByIdentifier:    "ReadScalingDataByIdentifier",
	SIDSecurityAccess:                 "SecurityAccess",
	SIDCommunicationControl:           "CommunicationControl",
	SIDReadDataByPeriodicIdentifier:   "ReadDataByPeriodicIdentifier",
	SIDDynamicallyDefineDataID:        "DynamicallyDefineDataIdentifier",
	SIDWriteDataByIdentifier:          "WriteDataByIdentifier",
	SIDInputOutputControlByIdentifier: "InputOutputControlByIdentifier",
	SIDRoutineControl:                 "RoutineControl",
	SIDRequestDownload:                "RequestDownload",
	SIDRequestUpload:                  "RequestUpload",
	SIDTransferData:                   "TransferData",
	SIDRequestTransferExit:            "RequestTransferExit",
	SIDRequestFileTransfer:            "RequestFileTransfer",
	SIDWriteMemoryByAddress:           "WriteMemoryByAddress",
	SIDTesterPresent:                  "TesterPresent",
	SIDAccessTimingParameter:          "AccessTimingParameter",
	SIDSecuredDataTransmission:        "SecuredDataTransmission",
	SIDControlDTCSetting:              "ControlDTCSetting",
	SIDResponseOnEvent:                "ResponseOnEvent",
}
