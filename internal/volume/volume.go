package volume

import "math"

const (
	// MinDB is the lowest volume the protocol can express, in dB.
	MinDB = -99.9

	// DefaultMaxDB is the maximum volume assumed until the device
	// reports its own limit.
	DefaultMaxDB = 12.0

	minLinear = 0.02
	maxLinear = 1.0

	// linearRef and fraction anchor the curve: the linear reference
	// position maps to the dB value at the given fraction of the range.
	linearRef = 0.57
	fraction  = 0.5
)

// ComputeAlpha derives the curve exponent for a given maximum volume.
// The reference dB is the midpoint of the range; alpha is chosen so the
// curve passes through (linearRef, reference dB).
func ComputeAlpha(maxDB float64) float64 {
	dbRef := MinDB + fraction*(maxDB-MinDB)

	t := (math.Log10(linearRef) - math.Log10(minLinear)) /
		(math.Log10(maxLinear) - math.Log10(minLinear))

	tFlat := (dbRef - MinDB) / (maxDB - MinDB)

	return math.Log(tFlat) / math.Log(t)
}

// LinearToDB converts a normalized 0..1 value to dB. The input is
// clamped to [0.02, 1.0]; results strictly inside the dB range are
// rounded to 0.5 dB steps, boundary values pass through unrounded.
func LinearToDB(value, maxDB, alpha float64) float64 {
	value = clamp(value, minLinear, maxLinear)

	logMin := math.Log10(minLinear)
	logMax := math.Log10(maxLinear)
	t := (math.Log10(value) - logMin) / (logMax - logMin)

	tFlat := math.Pow(t, alpha)

	db := MinDB + tFlat*(maxDB-MinDB)

	if db > MinDB && db < maxDB {
		db = math.Round(db*2) / 2
	}
	return db
}

// DBToLinear converts a dB value to a normalized 0..1 value, rounded to
// three decimals. The input is clamped to [MinDB, maxDB] and rounded to
// one decimal before inversion, matching the wire resolution.
func DBToLinear(db, maxDB, alpha float64) float64 {
	db = math.Round(clamp(db, MinDB, maxDB)*10) / 10

	tFlat := (db - MinDB) / (maxDB - MinDB)

	t := math.Pow(tFlat, 1/alpha)

	logMin := math.Log10(minLinear)
	logMax := math.Log10(maxLinear)
	logValue := logMin + t*(logMax-logMin)

	return math.Round(math.Pow(10, logValue)*1000) / 1000
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
