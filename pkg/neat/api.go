package neat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ruphel/neat-python/internal/model"
	"github.com/ruphel/neat-python/internal/nn"
	"github.com/ruphel/neat-python/internal/storage"
)

const (
	defaultDBPath = "neat.db"
	defaultScope  = "default"
)

var (
	ErrInvalidArgument = nn.ErrInvalidArgument
	ErrConfiguration   = nn.ErrConfiguration
	ErrReference       = nn.ErrReference
)

type (
	NeuronHandle = int
	NeuronOption = nn.NeuronOption
	NeuronType   = model.NeuronType
)

const (
	NeuronInput  = model.NeuronInput
	NeuronOutput = model.NeuronOutput
	NeuronHidden = model.NeuronHidden
)

var (
	WithID       = nn.WithID
	WithBias     = nn.WithBias
	WithResponse = nn.WithResponse
)

type Options struct {
	StoreKind string
	DBPath    string
	// Scope keys the persisted allocator counter and activation mode.
	Scope string
	// ActivationMode configures the policy up front. Empty leaves it unset.
	ActivationMode string
	// IDs lets several clients share one allocator. Nil creates a new one.
	IDs    *nn.IDAllocator
	Logger *zap.Logger
}

// Client is the host-facing boundary around one network, its activation
// policy and id allocator, plus the store holding their persisted state.
type Client struct {
	store  storage.Store
	scope  string
	logger *zap.Logger
	net    *nn.Network

	initOnce sync.Once
	initErr  error
}

type EvaluateResult struct {
	RunID   string
	Outputs map[int]float64
}

type TraceItem struct {
	RunID        string
	CreatedAtUTC string
	Mode         string
	Passes       int
	Inputs       map[int]float64
	Outputs      map[int]float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	scope := opts.Scope
	if scope == "" {
		scope = defaultScope
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	policy := nn.NewActivationPolicy()
	if opts.ActivationMode != "" {
		if err := policy.SetMode(opts.ActivationMode); err != nil {
			return nil, err
		}
	}

	return &Client{
		store:  store,
		scope:  scope,
		logger: logger.With(zap.String("scope", scope)),
		net:    nn.NewNetwork(opts.IDs, policy),
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

func (c *Client) CreateNeuron(neuronType NeuronType, opts ...NeuronOption) (NeuronHandle, error) {
	n, err := c.net.CreateNeuron(neuronType, opts...)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("neuron created",
		zap.Int("id", n.ID()),
		zap.String("type", n.Type().String()),
		zap.Float64("bias", n.Bias()),
		zap.Float64("response", n.Response()),
	)
	return n.ID(), nil
}

func (c *Client) ConnectSynapse(target, source NeuronHandle, weight float64) error {
	return c.net.ConnectSynapse(target, source, weight)
}

func (c *Client) Activate(h NeuronHandle) (float64, error) {
	return c.net.Activate(h)
}

func (c *Client) SetActivationMode(name string) error {
	if err := c.net.SetActivationMode(name); err != nil {
		return err
	}
	c.logger.Info("activation mode set", zap.String("mode", name))
	return nil
}

// ActivationMode returns the configured mode and whether one is set.
func (c *Client) ActivationMode() (string, bool) {
	return c.net.Policy().Mode()
}

func (c *Client) ID(h NeuronHandle) (int, error) {
	n, err := c.neuron(h)
	if err != nil {
		return 0, err
	}
	return n.ID(), nil
}

func (c *Client) Type(h NeuronHandle) (NeuronType, error) {
	n, err := c.neuron(h)
	if err != nil {
		return "", err
	}
	return n.Type(), nil
}

func (c *Client) Output(h NeuronHandle) (float64, error) {
	return c.net.Output(h)
}

func (c *Client) SetOutput(h NeuronHandle, value float64) error {
	return c.net.SetOutput(h, value)
}

func (c *Client) Forward(inputs map[int]float64) (map[int]float64, error) {
	return c.net.Forward(inputs)
}

func (c *Client) Relax(inputs map[int]float64, passes int) (map[int]float64, error) {
	return c.net.Relax(inputs, passes)
}

// Evaluate relaxes the network for passes sweeps and records the sweep as
// a trace in the store.
func (c *Client) Evaluate(ctx context.Context, inputs map[int]float64, passes int) (EvaluateResult, error) {
	if err := c.Init(ctx); err != nil {
		return EvaluateResult{}, err
	}
	outputs, err := c.net.Relax(inputs, passes)
	if err != nil {
		return EvaluateResult{}, err
	}
	mode, _ := c.net.Policy().Mode()

	trace := model.SweepTrace{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           uuid.NewString(),
		Scope:           c.scope,
		Mode:            mode,
		Passes:          passes,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
		Inputs:          inputs,
		Outputs:         outputs,
	}
	if err := c.store.SaveSweepTrace(ctx, trace); err != nil {
		return EvaluateResult{}, fmt.Errorf("save sweep trace: %w", err)
	}
	c.logger.Debug("sweep recorded",
		zap.String("run_id", trace.RunID),
		zap.String("mode", mode),
		zap.Int("passes", passes),
		zap.Int("neurons", len(outputs)),
	)
	return EvaluateResult{RunID: trace.RunID, Outputs: outputs}, nil
}

func (c *Client) SweepTraces(ctx context.Context, limit int) ([]TraceItem, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	traces, err := c.store.ListSweepTraces(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := make([]TraceItem, 0, len(traces))
	for _, t := range traces {
		items = append(items, TraceItem{
			RunID:        t.RunID,
			CreatedAtUTC: t.CreatedAtUTC,
			Mode:         t.Mode,
			Passes:       t.Passes,
			Inputs:       t.Inputs,
			Outputs:      t.Outputs,
		})
	}
	return items, nil
}

// Checkpoint persists the allocator counter and activation mode so that a
// later process can resume the id sequence without reuse.
func (c *Client) Checkpoint(ctx context.Context) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	counter := c.net.IDs().Current()
	if err := c.store.SaveAllocatorState(ctx, model.AllocatorState{
		VersionedRecord: storage.CurrentVersion(),
		Scope:           c.scope,
		Counter:         counter,
	}); err != nil {
		return fmt.Errorf("save allocator state: %w", err)
	}
	mode, _ := c.net.Policy().Mode()
	if err := c.store.SavePolicy(ctx, model.PolicyRecord{
		VersionedRecord: storage.CurrentVersion(),
		Scope:           c.scope,
		Mode:            mode,
	}); err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	c.logger.Info("checkpoint saved", zap.Int("id_counter", counter), zap.String("mode", mode))
	return nil
}

// Restore loads the persisted allocator counter and activation mode. The
// counter only moves forward so ids already handed out stay unique. A
// persisted mode replaces the current one; an unset persisted mode leaves
// the current policy alone.
func (c *Client) Restore(ctx context.Context) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	state, ok, err := c.store.GetAllocatorState(ctx, c.scope)
	if err != nil {
		return fmt.Errorf("load allocator state: %w", err)
	}
	if ok && state.Counter > c.net.IDs().Current() {
		if err := c.net.IDs().Restore(state.Counter); err != nil {
			return err
		}
	}
	policy, ok, err := c.store.GetPolicy(ctx, c.scope)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}
	if ok && policy.Mode != "" {
		if err := c.net.SetActivationMode(policy.Mode); err != nil {
			return err
		}
	}
	mode, _ := c.net.Policy().Mode()
	c.logger.Info("checkpoint restored", zap.Int("id_counter", c.net.IDs().Current()), zap.String("mode", mode))
	return nil
}

// ResetIDs restarts the id sequence at 1 and persists the reset. The
// client's network must be empty, otherwise new ids would collide with the
// neurons it already holds.
func (c *Client) ResetIDs(ctx context.Context) error {
	if n := len(c.net.Neurons()); n > 0 {
		return fmt.Errorf("%w: cannot reset ids while the network holds %d neurons", ErrInvalidArgument, n)
	}
	if err := c.Init(ctx); err != nil {
		return err
	}
	c.net.IDs().Reset()
	if err := c.store.SaveAllocatorState(ctx, model.AllocatorState{
		VersionedRecord: storage.CurrentVersion(),
		Scope:           c.scope,
	}); err != nil {
		return fmt.Errorf("save allocator state: %w", err)
	}
	c.logger.Info("id allocator reset")
	return nil
}

// IDCounter returns the last id handed out by the client's allocator.
func (c *Client) IDCounter() int {
	return c.net.IDs().Current()
}

func (c *Client) neuron(h NeuronHandle) (*nn.Neuron, error) {
	n, ok := c.net.Neuron(h)
	if !ok {
		return nil, fmt.Errorf("%w: neuron %d not found", ErrReference, h)
	}
	return n, nil
}
