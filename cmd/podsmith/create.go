// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"podsmith/internal/lifecycle"

	"github.com/spf13/cobra"
)

var (
	createImage   string
	createName    string
	createPorts   []string
	createVolumes []string
	createEnv     []string
	createGPU     bool
	createCPUs    string
	createMemory  string
	createNetwork string
	createDinD    bool

	createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a container",
		Long: `Create a container from an image, locally or over SSH.

Port, volume and env mappings use key=value form and repeat:
  podsmith create --image nginx:1.27 --port 80=8080 --port 443=
An empty value requests a dynamically assigned host port.`,
		RunE: runCreate,
	}
)

func init() {
	createCmd.Flags().StringVarP(&createImage, "image", "i", "", "container image (required)")
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "container name (generated when empty)")
	createCmd.Flags().StringArrayVarP(&createPorts, "port", "p", nil, "port mapping container=host (repeatable)")
	createCmd.Flags().StringArrayVar(&createVolumes, "volume", nil, "volume mapping host=container (repeatable)")
	createCmd.Flags().StringArrayVarP(&createEnv, "env", "e", nil, "environment variable key=value (repeatable)")
	createCmd.Flags().BoolVar(&createGPU, "gpu", false, "request GPU passthrough (downgrades silently when unavailable)")
	createCmd.Flags().StringVar(&createCPUs, "cpus", "", "CPU limit (e.g. 2)")
	createCmd.Flags().StringVar(&createMemory, "memory", "", "memory limit (e.g. 4g)")
	createCmd.Flags().StringVar(&createNetwork, "network", "", "container network")
	createCmd.Flags().BoolVar(&createDinD, "dind", false, "enable Docker-in-Docker (privileged, host socket mounted)")

	_ = createCmd.MarkFlagRequired("image")
}

func runCreate(cmd *cobra.Command, _ []string) error {
	m, err := buildManager()
	if err != nil {
		return err
	}

	spec := lifecycle.Spec{
		Image:       createImage,
		Name:        createName,
		Ports:       parsePairs(createPorts),
		Volumes:     parsePairs(createVolumes),
		Env:         parsePairs(createEnv),
		EnableGPU:   createGPU,
		CPULimit:    createCPUs,
		MemoryLimit: createMemory,
		Network:     createNetwork,
		DinD:        createDinD,
	}

	rec, err := m.Create(cmd.Context(), spec)
	if err != nil {
		return err
	}

	fmt.Println(SuccessStyle.Render("Container created"))
	fmt.Print(renderRecord(*rec))
	return nil
}

// parsePairs turns repeated key=value flags into a map. A bare key maps to
// the empty string.
func parsePairs(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		m[key] = value
	}
	return m
}

// renderRecord renders a container record from its flat-map form.
func renderRecord(rec lifecycle.Record) string {
	m := rec.ToMap()

	var b strings.Builder
	writeField := func(label string, value string) {
		b.WriteString(labelStyle.Render(label) + " " + value + "\n")
	}

	writeField("ID", ValueStyle.Render(fmt.Sprint(m["container_id"])))
	writeField("Name", ValueStyle.Render(fmt.Sprint(m["container_name"])))
	writeField("Image", fmt.Sprint(m["image"]))
	writeField("Status", statusStyle(fmt.Sprint(m["status"])).Render(fmt.Sprint(m["status"])))

	if ports, ok := m["ports"].(map[string]string); ok && len(ports) > 0 {
		keys := make([]string, 0, len(ports))
		for k := range ports {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]string, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, k+" -> "+ports[k])
		}
		writeField("Ports", strings.Join(entries, ", "))
	}

	gpuLine := "disabled"
	if enabled, _ := m["gpu_enabled"].(bool); enabled {
		gpuLine = fmt.Sprintf("%v x %v", m["gpu_count"], m["gpu_type"])
	}
	writeField("GPU", gpuLine)

	return b.String()
}
