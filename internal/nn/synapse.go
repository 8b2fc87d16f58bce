package nn

import "fmt"

// Synapse feeds a weighted copy of its source's output into the neuron
// that owns it. The source pointer does not own the source neuron.
type Synapse struct {
	source *Neuron
	weight float64
}

func NewSynapse(source *Neuron, weight float64) (*Synapse, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: synapse source neuron is required", ErrReference)
	}
	if !finite(weight) {
		return nil, fmt.Errorf("%w: synapse weight must be finite, got %v", ErrInvalidArgument, weight)
	}
	return &Synapse{source: source, weight: weight}, nil
}

// Contribution reads the source's stored output; it never activates it.
func (s *Synapse) Contribution() float64 {
	return s.weight * s.source.Output()
}

func (s *Synapse) Source() *Neuron {
	return s.source
}

func (s *Synapse) Weight() float64 {
	return s.weight
}
