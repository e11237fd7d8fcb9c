package factory

// Sequence is a named counter producing strictly increasing values until the
// registry is reset.
type Sequence struct {
	name    string
	counter int
	format  Formatter
}

// SequenceOption customizes a sequence declared with DefineSequence.
type SequenceOption func(*Sequence)

// StartAt sets the first counter value. The default comes from the registry.
func StartAt(n int) SequenceOption {
	return func(s *Sequence) {
		s.counter = n
	}
}

func newSequence(name string, start int, format Formatter) *Sequence {
	return &Sequence{name: name, counter: start, format: format}
}

// Name returns the sequence name.
func (s *Sequence) Name() string {
	return s.name
}

// draw advances the counter and returns the drawn value with the
// formatter to apply. A nil override selects the sequence's own formatter.
// Callers hold the registry lock; formatting happens after it is released.
func (s *Sequence) draw(override Formatter) (int, Formatter) {
	n := s.counter
	s.counter++
	if override != nil {
		return n, override
	}
	return n, s.format
}

// formatValue applies f to n, or returns the raw counter when f is nil.
func formatValue(n int, f Formatter) any {
	if f == nil {
		return n
	}
	return f(n)
}
