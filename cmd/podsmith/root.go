// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for podsmith.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"podsmith/internal/config"
	"podsmith/internal/gpu"
	"podsmith/internal/lifecycle"
	"podsmith/internal/toolkit"
	"podsmith/internal/transport"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// SSH flags override the configured transport per invocation.
	sshHost string
	sshUser string
	sshPort int
	sshKey  string

	// cfg is the loaded configuration, populated by initRootConfig.
	cfg = config.DefaultConfig()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "podsmith",
		Short: "Provision and manage GPU-ready containers",
		Long: TitleStyle.Render("podsmith") + SubtitleStyle.Render(" - provision and manage GPU-ready containers") + `

podsmith drives Docker on the local host or over SSH: it detects NVIDIA
GPU capability, installs the NVIDIA Container Toolkit when it is missing,
sets up rootless Docker, and manages container lifecycles end to end.

` + SubtitleStyle.Render("Examples:") + `
  podsmith create --image ubuntu:latest --port 80=8080 --gpu
  podsmith create --image nginx:1.27 --ssh-host 10.0.0.5 --ssh-user ops
  podsmith gpu detect       Probe GPU hardware, drivers and toolkit
  podsmith rootless setup   Provision a rootless Docker daemon
  podsmith list             List containers created in this session`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/podsmith/config.cue)")
	rootCmd.PersistentFlags().StringVar(&sshHost, "ssh-host", "", "execute on a remote host over SSH")
	rootCmd.PersistentFlags().StringVar(&sshUser, "ssh-user", "", "SSH user (with --ssh-host)")
	rootCmd.PersistentFlags().IntVar(&sshPort, "ssh-port", 0, "SSH port (with --ssh-host)")
	rootCmd.PersistentFlags().StringVar(&sshKey, "ssh-key", "", "SSH private key path (with --ssh-host)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(gpuCmd)
	rootCmd.AddCommand(rootlessCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// initRootConfig loads the config file and installs the log handler.
func initRootConfig() {
	loaded, err := config.NewProvider().Load(context.Background(), config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+err.Error())
	} else {
		cfg = loaded
	}

	if !verbose {
		verbose = cfg.UI.Verbose
	}

	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	slog.SetDefault(slog.New(handler))
}

// resolvedSSH merges SSH flag overrides over the configured settings.
func resolvedSSH() config.SSHSettings {
	ssh := cfg.SSH
	if sshHost != "" {
		ssh.Host = sshHost
	}
	if sshUser != "" {
		ssh.User = sshUser
	}
	if sshPort != 0 {
		ssh.Port = sshPort
	}
	if sshKey != "" {
		ssh.KeyPath = sshKey
	}
	if ssh.Port == 0 {
		ssh.Port = 22
	}
	return ssh
}

// buildTransport selects the transport: --ssh-host (or a configured host)
// means SSH, otherwise local execution.
func buildTransport() (transport.Transport, error) {
	ssh := resolvedSSH()
	if ssh.Host == "" {
		return transport.NewLocalTransport(), nil
	}

	sshCfg := transport.SSHConfig{
		Host:    ssh.Host,
		Port:    ssh.Port,
		User:    ssh.User,
		KeyPath: ssh.KeyPath,
	}
	client, err := transport.DialSSH(sshCfg)
	if err != nil {
		return nil, err
	}
	return transport.NewSSHTransport(client), nil
}

// toolkitCheck selects the runtime GPU support check for the configured
// engine.
func toolkitCheck() gpu.ToolkitCheck {
	if cfg.Engine == config.EngineRootless {
		return gpu.RootlessToolkitCheck{}
	}
	return gpu.DockerToolkitCheck{}
}

// buildManager wires a lifecycle manager over the selected transport.
func buildManager() (*lifecycle.Manager, error) {
	tr, err := buildTransport()
	if err != nil {
		return nil, err
	}

	detector := gpu.NewDetector(tr, toolkitCheck())
	provisioner := toolkit.NewProvisioner(tr, detector)

	return lifecycle.NewManager(tr, detector, provisioner,
		lifecycle.WithNamePrefix(cfg.NamePrefix),
		lifecycle.WithSettleInterval(cfg.SettleInterval()),
		lifecycle.WithCommandTimeout(cfg.CommandTimeout()),
	), nil
}
