package storage

import (
	"encoding/json"
	"errors"

	"github.com/ruphel/neat-python/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion stamps records written by this build.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeAllocatorState(s model.AllocatorState) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeAllocatorState(data []byte) (model.AllocatorState, error) {
	var state model.AllocatorState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.AllocatorState{}, err
	}
	if err := checkVersion(state.VersionedRecord); err != nil {
		return model.AllocatorState{}, err
	}
	return state, nil
}

func EncodePolicy(p model.PolicyRecord) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePolicy(data []byte) (model.PolicyRecord, error) {
	var policy model.PolicyRecord
	if err := json.Unmarshal(data, &policy); err != nil {
		return model.PolicyRecord{}, err
	}
	if err := checkVersion(policy.VersionedRecord); err != nil {
		return model.PolicyRecord{}, err
	}
	return policy, nil
}

func EncodeSweepTrace(t model.SweepTrace) ([]byte, error) {
	return json.Marshal(t)
}

func DecodeSweepTrace(data []byte) (model.SweepTrace, error) {
	var trace model.SweepTrace
	if err := json.Unmarshal(data, &trace); err != nil {
		return model.SweepTrace{}, err
	}
	if err := checkVersion(trace.VersionedRecord); err != nil {
		return model.SweepTrace{}, err
	}
	return trace, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
