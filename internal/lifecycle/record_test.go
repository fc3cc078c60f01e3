// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"reflect"
	"testing"
	"time"
)

func TestSpecValidate(t *testing.T) {
	if err := (Spec{}).Validate(); err != ErrMissingImage {
		t.Errorf("Validate() on empty spec = %v, want ErrMissingImage", err)
	}
	if err := (Spec{Image: "ubuntu:latest"}).Validate(); err != nil {
		t.Errorf("Validate() with image = %v, want nil", err)
	}
}

func TestStatusFromRuntime(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"running", StatusRunning},
		{"Running", StatusRunning},
		{" exited\n", StatusExited},
		{"created", StatusCreated},
		{"removed", StatusRemoved},
		{"paused", StatusUnknown},
		{"restarting", StatusUnknown},
		{"", StatusUnknown},
	}

	for _, tt := range tests {
		if got := statusFromRuntime(tt.raw); got != tt.want {
			t.Errorf("statusFromRuntime(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRecordMapRoundTrip(t *testing.T) {
	rec := Record{
		ID:           "deadbeefcafe0123",
		Name:         "podsmith-1700000000-a1b2c3d4",
		Image:        "nvidia/cuda:12.2.0-base-ubuntu22.04",
		Ports:        map[string]string{"80": "8080", "443": "10.0.0.5:8443"},
		GPUEnabled:   true,
		GPUCount:     2,
		GPUType:      "NVIDIA A100-SXM4-80GB",
		CreationTime: time.Unix(1700000000, 0),
		Status:       StatusRunning,
	}

	got := RecordFromMap(rec.ToMap())
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rec)
	}
}

func TestRecordToMapKeys(t *testing.T) {
	m := Record{Ports: map[string]string{}}.ToMap()

	for _, key := range []string{
		"container_id", "container_name", "image", "ports",
		"gpu_enabled", "gpu_count", "gpu_type", "creation_time", "status",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("ToMap() missing key %q", key)
		}
	}
	if len(m) != 9 {
		t.Errorf("ToMap() has %d keys, want 9", len(m))
	}
}

func TestRecordFromMapTolerantOfGarbage(t *testing.T) {
	rec := RecordFromMap(map[string]any{
		"container_id": 42,
		"gpu_count":    "two",
	})
	if rec.ID != "" || rec.GPUCount != 0 {
		t.Errorf("mistyped fields must stay zero-valued, got %+v", rec)
	}
}
