// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInspect is returned when inspect output cannot be parsed
// into a report. Callers must treat it as fatal for the operation in
// flight: a record is never built from partial inspect data.
var ErrMalformedInspect = errors.New("malformed inspect output")

type (
	// inspectReport is the subset of inspect output a Record is built from.
	inspectReport struct {
		Name   string
		Status string
		Image  string
		Ports  map[string]string
	}

	// inspectDocument mirrors the runtime's JSON shape. `docker inspect`
	// always returns an array, one element per inspected object.
	inspectDocument struct {
		Name  string `json:"Name"`
		State struct {
			Status string `json:"Status"`
		} `json:"State"`
		Config struct {
			Image string `json:"Image"`
		} `json:"Config"`
		NetworkSettings struct {
			Ports map[string][]portBinding `json:"Ports"`
		} `json:"NetworkSettings"`
	}

	portBinding struct {
		HostIP   string `json:"HostIp"`
		HostPort string `json:"HostPort"`
	}
)

// parseInspect extracts a report from raw `docker inspect` output. The
// parse is strict: anything other than a JSON array with at least one
// document is an error.
func parseInspect(raw string) (inspectReport, error) {
	var docs []inspectDocument
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return inspectReport{}, fmt.Errorf("%w: %v", ErrMalformedInspect, err)
	}
	if len(docs) == 0 {
		return inspectReport{}, fmt.Errorf("%w: empty document array", ErrMalformedInspect)
	}
	doc := docs[0]

	report := inspectReport{
		Name:   strings.TrimPrefix(doc.Name, "/"),
		Status: doc.State.Status,
		Image:  doc.Config.Image,
		Ports:  make(map[string]string, len(doc.NetworkSettings.Ports)),
	}

	// Each advertised "<port>/<proto>" pair maps to its first host binding.
	// A bind-to-all-interfaces host IP collapses to the bare port.
	for portProto, bindings := range doc.NetworkSettings.Ports {
		if len(bindings) == 0 || bindings[0].HostPort == "" {
			continue
		}
		containerPort, _, _ := strings.Cut(portProto, "/")
		value := bindings[0].HostPort
		if ip := bindings[0].HostIP; ip != "" && ip != "0.0.0.0" {
			value = ip + ":" + value
		}
		report.Ports[containerPort] = value
	}

	return report, nil
}
