// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"podsmith/internal/toolkit"

	"github.com/spf13/cobra"
)

var (
	rootlessUser string

	rootlessCmd = &cobra.Command{
		Use:   "rootless",
		Short: "Rootless Docker daemon operations",
	}

	rootlessStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Check whether a rootless Docker daemon is running",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tr, err := buildTransport()
			if err != nil {
				return err
			}

			setup := toolkit.NewRootlessSetup(tr)
			if setup.Configured(cmd.Context()) {
				fmt.Println(SuccessStyle.Render("Rootless Docker daemon is running."))
			} else {
				fmt.Println(WarningStyle.Render("No rootless Docker daemon found.") +
					" Run 'podsmith rootless setup' to provision one.")
			}
			return nil
		},
	}

	rootlessSetupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Provision a rootless Docker daemon",
		Long: `Install Docker CE and the rootless extras if absent, enable
unprivileged user namespaces, start the per-user daemon, and verify it
answers on the rootless socket.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tr, err := buildTransport()
			if err != nil {
				return err
			}

			setup := toolkit.NewRootlessSetup(tr)
			if setup.Configured(cmd.Context()) {
				fmt.Println(SuccessStyle.Render("Rootless Docker daemon already running."))
				return nil
			}
			if err := setup.Setup(cmd.Context(), rootlessUser); err != nil {
				return err
			}
			fmt.Println(SuccessStyle.Render("Rootless Docker daemon set up and verified."))
			return nil
		},
	}
)

func init() {
	rootlessSetupCmd.Flags().StringVar(&rootlessUser, "user", "", "target user (defaults to the transport's current user)")

	rootlessCmd.AddCommand(rootlessStatusCmd)
	rootlessCmd.AddCommand(rootlessSetupCmd)
}
