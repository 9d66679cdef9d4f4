package ir

// Version constants for plan snapshots.
const (
	// PlanVersion is the version of the compiled plan snapshot format.
	PlanVersion = "1"

	// CompilerVersion is the efql compiler version.
	CompilerVersion = "0.3.0"
)
