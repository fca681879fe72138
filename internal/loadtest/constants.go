package loadtest

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultReadyWait     = 30 * time.Second
	readyInitialInterval = 100 * time.Millisecond
	PercentageMultiplier = 100
)

// Generator ranges. Values stay inside what the service accepts.
const (
	minAge         = 18
	maxAge         = 60
	minIncome      = 1000
	maxIncome      = 20000
	maxTenureYears = 40
)

// probabilityTolerance absorbs the four decimal rounding applied on the wire.
const probabilityTolerance = 1e-4
