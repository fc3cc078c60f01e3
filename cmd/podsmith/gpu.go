// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"podsmith/internal/gpu"
	"podsmith/internal/toolkit"

	"github.com/spf13/cobra"
)

var (
	gpuCmd = &cobra.Command{
		Use:   "gpu",
		Short: "GPU capability and toolkit operations",
	}

	gpuDetectCmd = &cobra.Command{
		Use:   "detect",
		Short: "Probe GPU hardware, drivers and toolkit",
		Long: `Run the staged GPU probe: PCI bus scan, driver query, device
enumeration, and the container-runtime toolkit check. Each stage degrades
gracefully, so partial information is reported rather than an error.`,
		RunE: runGPUDetect,
	}

	gpuProvisionCmd = &cobra.Command{
		Use:   "provision",
		Short: "Install the NVIDIA Container Toolkit if missing",
		RunE:  runGPUProvision,
	}
)

func init() {
	gpuCmd.AddCommand(gpuDetectCmd)
	gpuCmd.AddCommand(gpuProvisionCmd)
}

func runGPUDetect(cmd *cobra.Command, _ []string) error {
	tr, err := buildTransport()
	if err != nil {
		return err
	}

	detector := gpu.NewDetector(tr, toolkitCheck())
	has, caps := detector.Detect(cmd.Context())

	fmt.Println(TitleStyle.Render("GPU capability"))
	fmt.Println(labelStyle.Render("Hardware") + " " + renderBool(caps.HasHardware))
	fmt.Println(labelStyle.Render("Drivers") + " " + renderBool(caps.HasDrivers))
	fmt.Println(labelStyle.Render("Toolkit") + " " + renderBool(caps.HasToolkit))

	if !has {
		fmt.Println(SubtitleStyle.Render("No NVIDIA GPU hardware on this host."))
		return nil
	}

	fmt.Println(labelStyle.Render("Count") + " " + fmt.Sprint(caps.Count))
	if len(caps.Types) > 0 {
		fmt.Println(labelStyle.Render("Devices") + " " + strings.Join(caps.Types, ", "))
	}
	if caps.DriverVersion != "" {
		fmt.Println(labelStyle.Render("Driver") + " " + caps.DriverVersion)
	}
	if caps.CUDAVersion != "" {
		fmt.Println(labelStyle.Render("CUDA") + " " + caps.CUDAVersion)
	}

	if caps.NeedsToolkit() {
		fmt.Println(WarningStyle.Render("Toolkit missing; run 'podsmith gpu provision' to install it."))
	}
	return nil
}

func runGPUProvision(cmd *cobra.Command, _ []string) error {
	tr, err := buildTransport()
	if err != nil {
		return err
	}

	detector := gpu.NewDetector(tr, toolkitCheck())
	provisioner := toolkit.NewProvisioner(tr, detector)

	if err := provisioner.Ensure(cmd.Context()); err != nil {
		return err
	}

	switch provisioner.State() {
	case toolkit.StatePresent:
		fmt.Println(SuccessStyle.Render("NVIDIA Container Toolkit already installed."))
	default:
		fmt.Println(SuccessStyle.Render("NVIDIA Container Toolkit installed and verified."))
	}
	return nil
}

func renderBool(v bool) string {
	if v {
		return SuccessStyle.Render("yes")
	}
	return WarningStyle.Render("no")
}
