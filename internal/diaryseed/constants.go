package diaryseed

// HTTP status code constants.
const (
	StatusOK      = 200
	StatusCreated = 201
)

// Generator constants.
const (
	exerciseDayShare = 0.4 // keeps rest days at or above the median
	startWeightKg    = 78.0
	baseLossKg       = 0.05
	noiseSDKg        = 0.08
	calorieLossPerKc = 0.0004
	sleepLossPerHr   = 0.03
	referenceKcal    = 2100
	referenceSleepHr = 7.0
	seedAge          = 38
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	directoryPermission  = 0o750
)
