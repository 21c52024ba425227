package travel

type LengthUnit int

const (
	Meter LengthUnit = iota + 1
	Kilometer
)

type TimeUnit int

const (
	Second TimeUnit = iota + 1
	Minute
	Hour
)

type SpeedUnit int

const (
	MetersPerSecond SpeedUnit = iota + 1
	KilometersPerHour
	MilesPerHour
)

func convertLength(meters float64, unit LengthUnit) float64 {
	switch unit {
	case Kilometer:
		return meters / 1000
	default:
		return meters
	}
}

func convertTime(seconds float64, unit TimeUnit) float64 {
	switch unit {
	case Minute:
		return seconds / 60
	case Hour:
		return seconds / 3600
	default:
		return seconds
	}
}

func convertSpeed(mps float64, unit SpeedUnit) float64 {
	switch unit {
	case KilometersPerHour:
		return mps * 3.6
	case MilesPerHour:
		return mps * 2.23694
	default:
		return mps
	}
}
