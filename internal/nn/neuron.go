package nn

import (
	"fmt"

	"github.com/ruphel/neat-python/internal/model"
)

// Neuron sums the contributions of its incoming synapses, adds its bias
// and passes the result through the policy's nonlinearity. A neuron
// without synapses is a sensor: Activate returns its stored output.
type Neuron struct {
	id       int
	typ      model.NeuronType
	bias     float64
	response float64
	synapses []*Synapse
	output   float64
}

type neuronConfig struct {
	id       int
	bias     float64
	response float64
}

type NeuronOption func(*neuronConfig)

// WithID sets an explicit id. Zero keeps automatic assignment.
func WithID(id int) NeuronOption {
	return func(c *neuronConfig) { c.id = id }
}

func WithBias(bias float64) NeuronOption {
	return func(c *neuronConfig) { c.bias = bias }
}

func WithResponse(response float64) NeuronOption {
	return func(c *neuronConfig) { c.response = response }
}

// NewNeuron builds a neuron of the given role. Ids are drawn from ids only
// when no explicit id is supplied.
func NewNeuron(ids *IDAllocator, typ model.NeuronType, opts ...NeuronOption) (*Neuron, error) {
	canonical, ok := model.ParseNeuronType(string(typ))
	if !ok {
		return nil, fmt.Errorf("%w: unsupported neuron type %q", ErrInvalidArgument, typ)
	}
	cfg := neuronConfig{response: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id < 0 {
		return nil, fmt.Errorf("%w: neuron id must be >= 0, got %d", ErrInvalidArgument, cfg.id)
	}
	if !finite(cfg.bias) {
		return nil, fmt.Errorf("%w: neuron bias must be finite, got %v", ErrInvalidArgument, cfg.bias)
	}
	if !finite(cfg.response) {
		return nil, fmt.Errorf("%w: neuron response must be finite, got %v", ErrInvalidArgument, cfg.response)
	}
	if cfg.id == 0 {
		if ids == nil {
			return nil, fmt.Errorf("%w: id allocator is required for automatic ids", ErrInvalidArgument)
		}
		cfg.id = ids.Next()
	}

	return &Neuron{
		id:       cfg.id,
		typ:      canonical,
		bias:     cfg.bias,
		response: cfg.response,
	}, nil
}

// Connect appends s to the input list. Duplicates are kept and counted
// once per occurrence.
func (n *Neuron) Connect(s *Synapse) error {
	if s == nil {
		return fmt.Errorf("%w: synapse is required", ErrReference)
	}
	n.synapses = append(n.synapses, s)
	return nil
}

// Activate recomputes the output from the current outputs of the source
// neurons. Sources are not activated; callers order the sweep.
func (n *Neuron) Activate(policy *ActivationPolicy) (float64, error) {
	if len(n.synapses) == 0 {
		return n.output, nil
	}
	fn, err := policy.Nonlinearity()
	if err != nil {
		return 0, fmt.Errorf("neuron %d: %w", n.id, err)
	}

	soma := 0.0
	for _, s := range n.synapses {
		soma += s.Contribution()
	}
	n.output = fn(soma+n.bias, n.response)
	return n.output, nil
}

func (n *Neuron) ID() int {
	return n.id
}

func (n *Neuron) Type() model.NeuronType {
	return n.typ
}

func (n *Neuron) Bias() float64 {
	return n.bias
}

func (n *Neuron) Response() float64 {
	return n.response
}

func (n *Neuron) Output() float64 {
	return n.output
}

// SetOutput injects a value, typically a sensor reading before a sweep.
func (n *Neuron) SetOutput(value float64) {
	n.output = value
}

func (n *Neuron) Synapses() []*Synapse {
	return append([]*Synapse(nil), n.synapses...)
}

func (n *Neuron) FanIn() int {
	return len(n.synapses)
}
