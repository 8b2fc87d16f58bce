package storage

import (
	"errors"
	"testing"

	"github.com/ruphel/neat-python/internal/model"
)

func TestSweepTraceCodecKeepsNeuronKeys(t *testing.T) {
	trace := model.SweepTrace{
		VersionedRecord: CurrentVersion(),
		RunID:           "r1",
		Mode:            "exp",
		Passes:          2,
		Inputs:          map[int]float64{1: 1, 2: -1},
		Outputs:         map[int]float64{1: 1, 2: -1, 7: 0.125},
	}
	data, err := EncodeSweepTrace(trace)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeSweepTrace(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Outputs[7] != 0.125 || decoded.Inputs[2] != -1 || decoded.Passes != 2 {
		t.Fatalf("unexpected decoded trace: %+v", decoded)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	stale := model.VersionedRecord{SchemaVersion: CurrentSchemaVersion + 1, CodecVersion: CurrentCodecVersion}

	data, err := EncodeAllocatorState(model.AllocatorState{VersionedRecord: stale, Scope: "s", Counter: 3})
	if err != nil {
		t.Fatalf("encode allocator: %v", err)
	}
	if _, err := DecodeAllocatorState(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}

	data, err = EncodePolicy(model.PolicyRecord{VersionedRecord: stale, Scope: "s", Mode: "exp"})
	if err != nil {
		t.Fatalf("encode policy: %v", err)
	}
	if _, err := DecodePolicy(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}

	if _, err := DecodeSweepTrace([]byte(`{"run_id":"r"}`)); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch for unversioned trace, got: %v", err)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodePolicy([]byte("{")); err == nil {
		t.Fatal("expected malformed payload error")
	}
}
