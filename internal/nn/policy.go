package nn

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// ModeExp selects the bounded logistic nonlinearity.
	ModeExp = "exp"
	// ModeTanh is the canonical name of the fallback nonlinearity. Any
	// mode other than ModeExp evaluates as tanh.
	ModeTanh = "tanh"
)

type Nonlinearity func(x, response float64) float64

// ActivationPolicy selects the nonlinearity applied by every neuron
// activated with it. A zero policy is unset and refuses to evaluate.
type ActivationPolicy struct {
	mu   sync.RWMutex
	mode string
	set  bool
}

func NewActivationPolicy() *ActivationPolicy {
	return &ActivationPolicy{}
}

func NewActivationPolicyWithMode(name string) (*ActivationPolicy, error) {
	p := NewActivationPolicy()
	if err := p.SetMode(name); err != nil {
		return nil, err
	}
	return p, nil
}

// SetMode configures the policy. Hosts must not call it during a sweep.
func (p *ActivationPolicy) SetMode(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: activation mode name is required", ErrInvalidArgument)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mode = name
	p.set = true
	return nil
}

// Reset returns the policy to the unset state.
func (p *ActivationPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mode = ""
	p.set = false
}

func (p *ActivationPolicy) Mode() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode, p.set
}

// Nonlinearity resolves the function selected by the current mode.
func (p *ActivationPolicy) Nonlinearity() (Nonlinearity, error) {
	if p == nil {
		return nil, errModeNotSet()
	}
	mode, ok := p.Mode()
	if !ok {
		return nil, errModeNotSet()
	}
	return nonlinearityFor(mode), nil
}

func (p *ActivationPolicy) Evaluate(x, response float64) (float64, error) {
	fn, err := p.Nonlinearity()
	if err != nil {
		return 0, err
	}
	return fn(x, response), nil
}

func nonlinearityFor(mode string) Nonlinearity {
	if mode == ModeExp {
		return Logistic
	}
	return Tanh
}

// ListModes returns the canonical mode names.
func ListModes() []string {
	return []string{ModeExp, ModeTanh}
}
