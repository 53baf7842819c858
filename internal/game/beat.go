package game

// BeatType categorizes a point on the beat timeline.
type BeatType string

const (
	BeatLow  BeatType = "low"
	BeatHigh BeatType = "high"
)

// BeatPoint is one entry of the externally sourced beat/energy timeline.
// Timestamp is seconds since audio start. The sequence is not assumed
// monotone.
type BeatPoint struct {
	Timestamp float64
	Type      BeatType
	Energy    float64
}

// NormalizeEnergies min-max scales energies into [0,1]. An empty or constant
// set has no usable range and maps every entry to 0.5.
func NormalizeEnergies(energies []float64) []float64 {
	out := make([]float64, len(energies))
	if len(energies) == 0 {
		return out
	}
	min, max := energies[0], energies[0]
	for _, e := range energies[1:] {
		if e < min {
			min = e
		}
		if e > max {
			max = e
		}
	}
	if max == min {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i, e := range energies {
		out[i] = (e - min) / (max - min)
	}
	return out
}
