package canbus

// CanIDPhysicalDefault is the arbitration ID a tester uses to address this
// ECU directly. Functional (broadcast) requests use CanIDFunctionalDefault.
const (
	CanIDPhysicalDefault   = 0x7E0
	CanIDFunctionalDefault = 0x7DF
	CanIDResponseDefault   = 0x7E8
)
