package ecu

import "fmt"

// dtcLabels is purely cosmetic: it decorates operator-facing log lines
// with a human name for a trouble code. Nothing in the engine persists
// or reports DTCs; ReadDTCInformation (0x19) and ClearDiagnosticInformation
// (0x14) are both unimplemented SIDs.
var dtcLabels = map[string]string{
	"0105": "Manifold Absolute Pressure/Barometric Pressure Circuit Malfunction",
	"0110": "Intake Air Temperature Circuit Malfunction",
	"0115": "Engine Coolant Temperature Circuit Malfunction",
	"0300": "Random/Multiple Cylinder Misfire Detected",
	"0420": "Catalyst System Efficiency Below Threshold (Bank 1)",
	"0500": "Vehicle Speed Sensor Malfunction",
	"0562": "System Voltage Low",
	"0600": "Serial Communication Link Malfunction",
	"1590": "SideStand Sensor Error",
	"1632": "Module Supply Voltage Out Of Range",
}

// DTCLabel returns "code: description" when the code is recognized, or
// just the code otherwise.
func DTCLabel(code string) string {
	if label, ok := dtcLabels[code]; ok {
		return fmt.Sprintf("%s: %s", code, label)
	}
	return code
}
