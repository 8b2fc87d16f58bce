package model

import "strings"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// NeuronType is the role tag of a neuron inside a network.
type NeuronType string

const (
	NeuronInput  NeuronType = "INPUT"
	NeuronOutput NeuronType = "OUTPUT"
	NeuronHidden NeuronType = "HIDDEN"
)

// ParseNeuronType returns the canonical role tag for value.
func ParseNeuronType(value string) (NeuronType, bool) {
	switch t := NeuronType(strings.TrimSpace(value)); t {
	case NeuronInput, NeuronOutput, NeuronHidden:
		return t, true
	default:
		return "", false
	}
}

func (t NeuronType) Valid() bool {
	_, ok := ParseNeuronType(string(t))
	return ok
}

func (t NeuronType) String() string {
	return string(t)
}

// AllocatorState is the persisted counter of an id allocator scope.
type AllocatorState struct {
	VersionedRecord
	Scope   string `json:"scope"`
	Counter int    `json:"counter"`
}

// PolicyRecord is the persisted activation mode of a scope. An empty Mode
// means the policy was never configured.
type PolicyRecord struct {
	VersionedRecord
	Scope string `json:"scope"`
	Mode  string `json:"mode"`
}

// SweepTrace records the injected inputs and resulting outputs of one
// evaluation sweep, keyed by neuron id.
type SweepTrace struct {
	VersionedRecord
	RunID        string          `json:"run_id"`
	Scope        string          `json:"scope"`
	Mode         string          `json:"mode"`
	Passes       int             `json:"passes"`
	CreatedAtUTC string          `json:"created_at_utc"`
	Inputs       map[int]float64 `json:"inputs"`
	Outputs      map[int]float64 `json:"outputs"`
}
