package grading

import "math"

// DefaultPassingRatio is the fraction of the max score that maps to the
// minimum passing grade 4.0. Faculty policy, not a tuning knob.
const DefaultPassingRatio = 0.51

const (
	MinGrade     = 1.0
	PassingGrade = 4.0
	MaxGrade     = 7.0
)

// Mapper converts an accumulated (score, maxScore) pair into a final grade
// on the 1.0–7.0 scale, piecewise-linear around the passing boundary.
type Mapper struct {
	PassingRatio float64
}

// NewMapper returns a Mapper with the given passing ratio. Ratios outside
// (0, 1) fall back to DefaultPassingRatio.
func NewMapper(ratio float64) Mapper {
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultPassingRatio
	}
	return Mapper{PassingRatio: ratio}
}

// Map returns the unrounded grade for score out of maxScore. Both branches
// evaluate to exactly PassingGrade at the boundary, so the mapping is
// continuous. A zero maxScore yields MinGrade. Rounding for display or
// storage is the caller's concern.
func (m Mapper) Map(score, maxScore float64) float64 {
	if maxScore == 0 {
		return MinGrade
	}
	p := score / maxScore
	if p < m.PassingRatio {
		return MinGrade + (p/m.PassingRatio)*(PassingGrade-MinGrade)
	}
	return PassingGrade + ((p-m.PassingRatio)/(1.0-m.PassingRatio))*(MaxGrade-PassingGrade)
}

// Round2 rounds a grade to two decimals, the precision grades are stored
// and displayed with.
func Round2(g float64) float64 {
	return math.Round(g*100) / 100
}
