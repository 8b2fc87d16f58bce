package main

import (
	"context"
	"fmt"

	"github.com/ruphel/neat-python/internal/config"
	neat "github.com/ruphel/neat-python/pkg/neat"
)

type neuronResult struct {
	ID     int     `json:"id"`
	Type   string  `json:"type"`
	Output float64 `json:"output"`
}

type fixtureResult struct {
	Name    string                  `json:"name"`
	RunID   string                  `json:"run_id"`
	Mode    string                  `json:"mode"`
	Passes  int                     `json:"passes"`
	Outputs map[string]neuronResult `json:"outputs"`
}

// buildFixture creates the fixture's neurons and synapses on client and
// returns the handle of every neuron by key.
func buildFixture(client *neat.Client, fx *config.Fixture) (map[string]neat.NeuronHandle, error) {
	handles := make(map[string]neat.NeuronHandle, len(fx.Neurons))
	for _, n := range fx.Neurons {
		opts := []neat.NeuronOption{neat.WithBias(n.Bias), neat.WithResponse(n.ResponseOrDefault())}
		if n.ID != 0 {
			opts = append(opts, neat.WithID(n.ID))
		}
		h, err := client.CreateNeuron(neat.NeuronType(n.Type), opts...)
		if err != nil {
			return nil, fmt.Errorf("neuron %s: %w", n.Key, err)
		}
		handles[n.Key] = h
	}
	for _, s := range fx.Synapses {
		if err := client.ConnectSynapse(handles[s.To], handles[s.From], s.Weight); err != nil {
			return nil, fmt.Errorf("synapse %s -> %s: %w", s.From, s.To, err)
		}
	}
	return handles, nil
}

func evaluateFixture(ctx context.Context, client *neat.Client, fx *config.Fixture, overrides map[string]float64) (fixtureResult, error) {
	handles, err := buildFixture(client, fx)
	if err != nil {
		return fixtureResult{}, err
	}

	inputs := make(map[int]float64, len(fx.Inputs)+len(overrides))
	for key, value := range fx.Inputs {
		inputs[handles[key]] = value
	}
	for key, value := range overrides {
		h, ok := handles[key]
		if !ok {
			return fixtureResult{}, fmt.Errorf("input references unknown neuron %q", key)
		}
		inputs[h] = value
	}

	res, err := client.Evaluate(ctx, inputs, fx.Passes)
	if err != nil {
		return fixtureResult{}, fmt.Errorf("fixture %s: %w", fx.Name, err)
	}

	mode, _ := client.ActivationMode()
	out := fixtureResult{
		Name:    fx.Name,
		RunID:   res.RunID,
		Mode:    mode,
		Passes:  fx.Passes,
		Outputs: make(map[string]neuronResult, len(handles)),
	}
	for key, h := range handles {
		typ, err := client.Type(h)
		if err != nil {
			return fixtureResult{}, err
		}
		out.Outputs[key] = neuronResult{ID: h, Type: typ.String(), Output: res.Outputs[h]}
	}
	return out, nil
}
