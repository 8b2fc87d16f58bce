package nn

import "github.com/ruphel/neat-python/internal/model"

// XORDemo is a recurrent tanh network solving XOR. The hidden neuron feeds
// its previous output back to itself, so each Forward call advances the
// recurrent state by one step.
type XORDemo struct {
	Network *Network
	Inputs  [2]int
	Hidden  int
	Output  int
}

func NewXORDemo(ids *IDAllocator) (*XORDemo, error) {
	policy, err := NewActivationPolicyWithMode(ModeTanh)
	if err != nil {
		return nil, err
	}
	net := NewNetwork(ids, policy)

	i1, err := net.CreateNeuron(model.NeuronInput)
	if err != nil {
		return nil, err
	}
	i2, err := net.CreateNeuron(model.NeuronInput)
	if err != nil {
		return nil, err
	}
	hidden, err := net.CreateNeuron(model.NeuronHidden, WithBias(1.3463))
	if err != nil {
		return nil, err
	}
	out, err := net.CreateNeuron(model.NeuronOutput, WithBias(-2.4443))
	if err != nil {
		return nil, err
	}

	links := []struct {
		to, from int
		weight   float64
	}{
		{hidden.ID(), i1.ID(), -4.3986},
		{hidden.ID(), i2.ID(), -2.3223},
		{hidden.ID(), hidden.ID(), 6.2832},
		{out.ID(), hidden.ID(), -4.9582},
	}
	for _, l := range links {
		if err := net.ConnectSynapse(l.to, l.from, l.weight); err != nil {
			return nil, err
		}
	}

	return &XORDemo{
		Network: net,
		Inputs:  [2]int{i1.ID(), i2.ID()},
		Hidden:  hidden.ID(),
		Output:  out.ID(),
	}, nil
}

// Step evaluates one recurrent step and returns the output neuron's value.
func (d *XORDemo) Step(v1, v2 float64) (float64, error) {
	values, err := d.Network.Forward(map[int]float64{d.Inputs[0]: v1, d.Inputs[1]: v2})
	if err != nil {
		return 0, err
	}
	return values[d.Output], nil
}
