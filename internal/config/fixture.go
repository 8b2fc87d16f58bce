package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ruphel/neat-python/internal/model"
)

// Fixture describes a network for the CLI to build and evaluate. Neurons
// are created in the listed order, which is also the sweep order. Synapses
// and inputs refer to neurons by key; ids come from the allocator unless a
// neuron pins one explicitly.
type Fixture struct {
	Name       string           `yaml:"name"`
	Activation string           `yaml:"activation"`
	Passes     int              `yaml:"passes"`
	Neurons    []NeuronFixture  `yaml:"neurons"`
	Synapses   []SynapseFixture `yaml:"synapses"`
	// Inputs are default sensor values keyed by neuron key.
	Inputs map[string]float64 `yaml:"inputs"`
}

type NeuronFixture struct {
	Key      string   `yaml:"key"`
	ID       int      `yaml:"id"`
	Type     string   `yaml:"type"`
	Bias     float64  `yaml:"bias"`
	Response *float64 `yaml:"response"`
}

type SynapseFixture struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Weight float64 `yaml:"weight"`
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	fx, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	if fx.Name == "" {
		fx.Name = path
	}
	return fx, nil
}

func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	if len(fx.Neurons) == 0 {
		return nil, errors.New("fixture has no neurons")
	}
	if fx.Passes < 0 {
		return nil, fmt.Errorf("passes must be >= 0, got %d", fx.Passes)
	}
	if fx.Passes == 0 {
		fx.Passes = 1
	}
	keys := make(map[string]bool, len(fx.Neurons))
	for i, n := range fx.Neurons {
		if n.Key == "" {
			return nil, fmt.Errorf("neuron %d has no key", i)
		}
		if keys[n.Key] {
			return nil, fmt.Errorf("duplicate neuron key %q", n.Key)
		}
		if !model.NeuronType(n.Type).Valid() {
			return nil, fmt.Errorf("neuron %q has invalid type %q", n.Key, n.Type)
		}
		keys[n.Key] = true
	}
	for i, s := range fx.Synapses {
		if !keys[s.From] || !keys[s.To] {
			return nil, fmt.Errorf("synapse %d references unknown neuron (%q -> %q)", i, s.From, s.To)
		}
	}
	for key := range fx.Inputs {
		if !keys[key] {
			return nil, fmt.Errorf("input references unknown neuron %q", key)
		}
	}
	return &fx, nil
}

// ResponseOrDefault returns the neuron's gain, 1 when omitted.
func (n NeuronFixture) ResponseOrDefault() float64 {
	if n.Response == nil {
		return 1
	}
	return *n.Response
}
