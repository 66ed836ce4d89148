package brain

// Sequence is a Source that replays fixed values in order and then returns
// Fallback forever. It records how many values were drawn.
type Sequence struct {
	Values   []float64
	Fallback float64
	drawn    int
}

// NewSequence returns a Sequence over values with the given fallback.
func NewSequence(fallback float64, values ...float64) *Sequence {
	return &Sequence{Values: values, Fallback: fallback}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	i := s.drawn
	s.drawn++
	if i < len(s.Values) {
		return s.Values[i]
	}
	return s.Fallback
}

// Drawn returns the number of values handed out so far.
func (s *Sequence) Drawn() int {
	return s.drawn
}
