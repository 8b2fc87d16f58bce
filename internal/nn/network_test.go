package nn

import (
	"errors"
	"math"
	"testing"

	"github.com/ruphel/neat-python/internal/model"
)

func TestForwardSimpleFeedForward(t *testing.T) {
	net := NewNetwork(nil, expPolicy(t))
	i1, _ := net.CreateNeuron(model.NeuronInput)
	i2, _ := net.CreateNeuron(model.NeuronInput)
	o, err := net.CreateNeuron(model.NeuronOutput, WithBias(0.5))
	if err != nil {
		t.Fatalf("create output: %v", err)
	}
	if err := net.ConnectSynapse(o.ID(), i1.ID(), 2); err != nil {
		t.Fatalf("connect i1: %v", err)
	}
	if err := net.ConnectSynapse(o.ID(), i2.ID(), -1); err != nil {
		t.Fatalf("connect i2: %v", err)
	}

	values, err := net.Forward(map[int]float64{i1.ID(): 1.0, i2.ID(): 0.25})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	want := Logistic(2.25, 1)
	if math.Abs(values[o.ID()]-want) > 1e-12 {
		t.Fatalf("unexpected output: got=%f want=%f", values[o.ID()], want)
	}
	if values[i1.ID()] != 1.0 || values[i2.ID()] != 0.25 {
		t.Fatalf("inputs must pass through: %+v", values)
	}
}

func TestForwardHiddenLayerOrder(t *testing.T) {
	net := NewNetwork(nil, nil)
	if err := net.SetActivationMode(ModeTanh); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	in, _ := net.CreateNeuron(model.NeuronInput)
	h, _ := net.CreateNeuron(model.NeuronHidden)
	o, _ := net.CreateNeuron(model.NeuronOutput)
	_ = net.ConnectSynapse(h.ID(), in.ID(), 1)
	_ = net.ConnectSynapse(o.ID(), h.ID(), 1)

	values, err := net.Forward(map[int]float64{in.ID(): 0.5})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	want := math.Tanh(math.Tanh(0.5))
	if values[o.ID()] != want {
		t.Fatalf("unexpected output: got=%f want=%f", values[o.ID()], want)
	}
}

func TestForwardUnsetPolicy(t *testing.T) {
	net := NewNetwork(nil, nil)
	in, _ := net.CreateNeuron(model.NeuronInput)
	o, _ := net.CreateNeuron(model.NeuronOutput)
	_ = net.ConnectSynapse(o.ID(), in.ID(), 1)

	_, err := net.Forward(map[int]float64{in.ID(): 1})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got: %v", err)
	}
}

func TestForwardRejectsNonInputInjection(t *testing.T) {
	net := NewNetwork(nil, expPolicy(t))
	in, _ := net.CreateNeuron(model.NeuronInput)
	o, _ := net.CreateNeuron(model.NeuronOutput)
	_ = net.ConnectSynapse(o.ID(), in.ID(), 1)

	if _, err := net.Forward(map[int]float64{o.ID(): 1}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got: %v", err)
	}
	if _, err := net.Forward(map[int]float64{99: 1}); !errors.Is(err, ErrReference) {
		t.Fatalf("expected ErrReference, got: %v", err)
	}
}

func TestRelaxValidation(t *testing.T) {
	net := NewNetwork(nil, expPolicy(t))
	if _, err := net.Relax(nil, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got: %v", err)
	}
}

func TestCreateNeuronDuplicateID(t *testing.T) {
	net := NewNetwork(nil, nil)
	if _, err := net.CreateNeuron(model.NeuronHidden, WithID(1)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := net.CreateNeuron(model.NeuronHidden, WithID(1)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for explicit duplicate, got: %v", err)
	}
	// the allocator's first id collides with the explicit id 1
	if _, err := net.CreateNeuron(model.NeuronHidden); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for allocated duplicate, got: %v", err)
	}
	n, err := net.CreateNeuron(model.NeuronHidden)
	if err != nil {
		t.Fatalf("create after collision: %v", err)
	}
	if n.ID() != 2 {
		t.Fatalf("unexpected id: got=%d want=2", n.ID())
	}
}

func TestConnectSynapseUnknownNeuron(t *testing.T) {
	net := NewNetwork(nil, nil)
	n, _ := net.CreateNeuron(model.NeuronOutput)
	if err := net.ConnectSynapse(n.ID(), 404, 1); !errors.Is(err, ErrReference) {
		t.Fatalf("expected ErrReference, got: %v", err)
	}
	if err := net.ConnectSynapse(404, n.ID(), 1); !errors.Is(err, ErrReference) {
		t.Fatalf("expected ErrReference, got: %v", err)
	}
	if err := net.ConnectSynapse(n.ID(), n.ID(), math.NaN()); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got: %v", err)
	}
}

func TestNetworkAccessors(t *testing.T) {
	net := NewNetwork(nil, nil)
	in, _ := net.CreateNeuron(model.NeuronInput)
	h, _ := net.CreateNeuron(model.NeuronHidden)
	o, _ := net.CreateNeuron(model.NeuronOutput)

	if got := net.Inputs(); len(got) != 1 || got[0] != in.ID() {
		t.Fatalf("unexpected inputs: %+v", got)
	}
	if got := net.Outputs(); len(got) != 1 || got[0] != o.ID() {
		t.Fatalf("unexpected outputs: %+v", got)
	}
	neurons := net.Neurons()
	if len(neurons) != 3 || neurons[1] != h {
		t.Fatalf("unexpected creation order: %+v", neurons)
	}
	if err := net.SetOutput(in.ID(), 3); err != nil {
		t.Fatalf("set output: %v", err)
	}
	if v, err := net.Output(in.ID()); err != nil || v != 3 {
		t.Fatalf("unexpected output: v=%f err=%v", v, err)
	}
	if v, err := net.Activate(in.ID()); err != nil || v != 3 {
		t.Fatalf("unexpected sensor activate: v=%f err=%v", v, err)
	}
	if _, ok := net.Neuron(12345); ok {
		t.Fatal("expected missing neuron")
	}
}

func TestNetworksWithIndependentPolicies(t *testing.T) {
	build := func(mode string) (*Network, int, int) {
		p, err := NewActivationPolicyWithMode(mode)
		if err != nil {
			t.Fatalf("policy: %v", err)
		}
		net := NewNetwork(nil, p)
		in, _ := net.CreateNeuron(model.NeuronInput)
		o, _ := net.CreateNeuron(model.NeuronOutput)
		_ = net.ConnectSynapse(o.ID(), in.ID(), 1)
		return net, in.ID(), o.ID()
	}
	expNet, expIn, expOut := build(ModeExp)
	tanhNet, tanhIn, tanhOut := build(ModeTanh)

	expValues, err := expNet.Forward(map[int]float64{expIn: 0})
	if err != nil {
		t.Fatalf("exp forward: %v", err)
	}
	tanhValues, err := tanhNet.Forward(map[int]float64{tanhIn: 0})
	if err != nil {
		t.Fatalf("tanh forward: %v", err)
	}
	if expValues[expOut] != 0.5 || tanhValues[tanhOut] != 0 {
		t.Fatalf("policies leaked across networks: exp=%f tanh=%f", expValues[expOut], tanhValues[tanhOut])
	}
}

func TestXORDemoMatchesReferenceStep(t *testing.T) {
	demo, err := NewXORDemo(NewIDAllocator())
	if err != nil {
		t.Fatalf("new demo: %v", err)
	}

	recurrent := 0.0
	cases := [][2]float64{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	for _, c := range cases {
		h := math.Tanh(c[0]*-4.3986 + c[1]*-2.3223 + recurrent*6.2832 + 1.3463)
		want := math.Tanh(h*-4.9582 - 2.4443)
		recurrent = h

		got, err := demo.Step(c[0], c[1])
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("unexpected xor output for %v: got=%f want=%f", c, got, want)
		}
	}
}
