// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"strings"
	"time"
)

const (
	// StatusCreated means the container exists but was never started.
	StatusCreated Status = "created"
	// StatusRunning means the container is up.
	StatusRunning Status = "running"
	// StatusExited means the container stopped.
	StatusExited Status = "exited"
	// StatusRemoved means the container is gone from the runtime.
	StatusRemoved Status = "removed"
	// StatusUnknown covers every runtime state outside the lifecycle model
	// (paused, restarting, dead).
	StatusUnknown Status = "unknown"
)

type (
	// Status is the lifecycle state of a tracked container.
	Status string

	// Record is the authoritative description of a created container,
	// populated from inspect output.
	//
	// Invariant: when GPUEnabled is false, GPUCount is 0 and GPUType is
	// "None".
	Record struct {
		ID           string
		Name         string
		Image        string
		Ports        map[string]string
		GPUEnabled   bool
		GPUCount     int
		GPUType      string
		CreationTime time.Time
		Status       Status
	}
)

// statusFromRuntime maps a raw runtime status string onto the lifecycle
// model, folding everything unrecognized into StatusUnknown.
func statusFromRuntime(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusCreated:
		return StatusCreated
	case StatusRunning:
		return StatusRunning
	case StatusExited:
		return StatusExited
	case StatusRemoved:
		return StatusRemoved
	default:
		return StatusUnknown
	}
}

// ToMap serializes the record as a flat map, the wire form consumers of
// the registry receive.
func (r Record) ToMap() map[string]any {
	ports := make(map[string]string, len(r.Ports))
	for k, v := range r.Ports {
		ports[k] = v
	}
	return map[string]any{
		"container_id":   r.ID,
		"container_name": r.Name,
		"image":          r.Image,
		"ports":          ports,
		"gpu_enabled":    r.GPUEnabled,
		"gpu_count":      r.GPUCount,
		"gpu_type":       r.GPUType,
		"creation_time":  r.CreationTime.Unix(),
		"status":         string(r.Status),
	}
}

// RecordFromMap reconstructs a Record from its flat-map form. Fields with
// missing or mistyped values are left at their zero value; ToMap followed
// by RecordFromMap is lossless apart from sub-second creation time.
func RecordFromMap(m map[string]any) Record {
	var r Record
	if v, ok := m["container_id"].(string); ok {
		r.ID = v
	}
	if v, ok := m["container_name"].(string); ok {
		r.Name = v
	}
	if v, ok := m["image"].(string); ok {
		r.Image = v
	}
	if v, ok := m["ports"].(map[string]string); ok {
		r.Ports = make(map[string]string, len(v))
		for k, p := range v {
			r.Ports[k] = p
		}
	}
	if v, ok := m["gpu_enabled"].(bool); ok {
		r.GPUEnabled = v
	}
	if v, ok := m["gpu_count"].(int); ok {
		r.GPUCount = v
	}
	if v, ok := m["gpu_type"].(string); ok {
		r.GPUType = v
	}
	if v, ok := m["creation_time"].(int64); ok {
		r.CreationTime = time.Unix(v, 0)
	}
	if v, ok := m["status"].(string); ok {
		r.Status = Status(v)
	}
	return r
}
