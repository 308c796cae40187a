package types

type Band int

const (
	Frigid Band = iota
	Cold
	Cool
	Pleasant
	Warm
	Hot
)

var bandNames = [...]string{"frigid", "cold", "cool", "pleasant", "warm", "hot"}

func (b Band) String() string {
	if b < Frigid || b > Hot {
		return "unknown"
	}
	return bandNames[b]
}

func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// BandFor maps a temperature in Celsius to its band. Lower bounds are inclusive.
func BandFor(celsius float64) Band {
	switch {
	case celsius < -10:
		return Frigid
	case celsius < 0:
		return Cold
	case celsius < 10:
		return Cool
	case celsius < 20:
		return Pleasant
	case celsius < 30:
		return Warm
	default:
		return Hot
	}
}
