package nn

import (
	"fmt"
	"sort"

	"github.com/ruphel/neat-python/internal/model"
)

// Network owns a set of neurons keyed by id and evaluates them in
// creation order. It is not safe for concurrent use.
type Network struct {
	ids     *IDAllocator
	policy  *ActivationPolicy
	neurons map[int]*Neuron
	order   []*Neuron
}

func NewNetwork(ids *IDAllocator, policy *ActivationPolicy) *Network {
	if ids == nil {
		ids = NewIDAllocator()
	}
	if policy == nil {
		policy = NewActivationPolicy()
	}
	return &Network{
		ids:     ids,
		policy:  policy,
		neurons: make(map[int]*Neuron),
	}
}

func (net *Network) IDs() *IDAllocator {
	return net.ids
}

func (net *Network) Policy() *ActivationPolicy {
	return net.policy
}

func (net *Network) SetActivationMode(name string) error {
	return net.policy.SetMode(name)
}

func (net *Network) CreateNeuron(typ model.NeuronType, opts ...NeuronOption) (*Neuron, error) {
	cfg := neuronConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id != 0 {
		if _, exists := net.neurons[cfg.id]; exists {
			return nil, fmt.Errorf("%w: neuron id %d already exists", ErrInvalidArgument, cfg.id)
		}
	}

	n, err := NewNeuron(net.ids, typ, opts...)
	if err != nil {
		return nil, err
	}
	if _, exists := net.neurons[n.ID()]; exists {
		return nil, fmt.Errorf("%w: allocated neuron id %d collides with an explicit id", ErrInvalidArgument, n.ID())
	}
	net.neurons[n.ID()] = n
	net.order = append(net.order, n)
	return n, nil
}

// ConnectSynapse appends a synapse from source into target.
func (net *Network) ConnectSynapse(targetID, sourceID int, weight float64) error {
	target, err := net.lookup(targetID)
	if err != nil {
		return err
	}
	source, err := net.lookup(sourceID)
	if err != nil {
		return err
	}
	s, err := NewSynapse(source, weight)
	if err != nil {
		return err
	}
	return target.Connect(s)
}

func (net *Network) Activate(id int) (float64, error) {
	n, err := net.lookup(id)
	if err != nil {
		return 0, err
	}
	return n.Activate(net.policy)
}

func (net *Network) SetOutput(id int, value float64) error {
	n, err := net.lookup(id)
	if err != nil {
		return err
	}
	n.SetOutput(value)
	return nil
}

func (net *Network) Output(id int) (float64, error) {
	n, err := net.lookup(id)
	if err != nil {
		return 0, err
	}
	return n.Output(), nil
}

func (net *Network) Neuron(id int) (*Neuron, bool) {
	n, ok := net.neurons[id]
	return n, ok
}

// Neurons returns the neurons in creation order.
func (net *Network) Neurons() []*Neuron {
	return append([]*Neuron(nil), net.order...)
}

func (net *Network) Inputs() []int {
	return net.idsOfType(model.NeuronInput)
}

func (net *Network) Outputs() []int {
	return net.idsOfType(model.NeuronOutput)
}

// Forward injects inputs and activates every neuron once in creation
// order, returning all outputs keyed by neuron id.
func (net *Network) Forward(inputs map[int]float64) (map[int]float64, error) {
	return net.Relax(inputs, 1)
}

// Relax repeats the Forward sweep passes times so that recurrent
// connections settle.
func (net *Network) Relax(inputs map[int]float64, passes int) (map[int]float64, error) {
	if passes < 1 {
		return nil, fmt.Errorf("%w: passes must be >= 1, got %d", ErrInvalidArgument, passes)
	}
	if err := net.inject(inputs); err != nil {
		return nil, err
	}
	for pass := 0; pass < passes; pass++ {
		for _, n := range net.order {
			if n.Type() == model.NeuronInput {
				continue
			}
			if _, err := n.Activate(net.policy); err != nil {
				return nil, err
			}
		}
	}

	values := make(map[int]float64, len(net.order))
	for _, n := range net.order {
		values[n.ID()] = n.Output()
	}
	return values, nil
}

func (net *Network) inject(inputs map[int]float64) error {
	ids := make([]int, 0, len(inputs))
	for id := range inputs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		n, err := net.lookup(id)
		if err != nil {
			return err
		}
		if n.Type() != model.NeuronInput {
			return fmt.Errorf("%w: neuron %d is %s, inputs must target INPUT neurons", ErrInvalidArgument, id, n.Type())
		}
	}
	for id, value := range inputs {
		net.neurons[id].SetOutput(value)
	}
	return nil
}

func (net *Network) lookup(id int) (*Neuron, error) {
	n, ok := net.neurons[id]
	if !ok {
		return nil, fmt.Errorf("%w: neuron %d not found", ErrReference, id)
	}
	return n, nil
}

func (net *Network) idsOfType(typ model.NeuronType) []int {
	out := make([]int, 0)
	for _, n := range net.order {
		if n.Type() == typ {
			out = append(out, n.ID())
		}
	}
	return out
}
