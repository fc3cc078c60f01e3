// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	stopGrace time.Duration

	stopCmd = &cobra.Command{
		Use:   "stop <container>",
		Short: "Stop a container",
		Long: `Stop a container by name or ID with a grace period.

Stopping a container that is already gone is reported as success.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager()
			if err != nil {
				return err
			}
			if !m.Stop(cmd.Context(), args[0], stopGrace) {
				return fmt.Errorf("failed to stop container %s", args[0])
			}
			fmt.Println(SuccessStyle.Render("Stopped ") + ValueStyle.Render(args[0]))
			return nil
		},
	}

	rmForce bool

	rmCmd = &cobra.Command{
		Use:   "rm <container>",
		Short: "Remove a container",
		Long: `Remove a container by name or ID.

Removing a container that is already gone is reported as success.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager()
			if err != nil {
				return err
			}
			if !m.Remove(cmd.Context(), args[0], rmForce) {
				return fmt.Errorf("failed to remove container %s", args[0])
			}
			fmt.Println(SuccessStyle.Render("Removed ") + ValueStyle.Render(args[0]))
			return nil
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status <container>",
		Short: "Show a container's runtime status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager()
			if err != nil {
				return err
			}
			_, status := m.Status(cmd.Context(), args[0])
			fmt.Println(labelStyle.Render("Status") + " " + statusStyle(status).Render(status))
			return nil
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List containers carrying this tool's name prefix",
		Long:  `List containers whose names carry the configured prefix, as reported by the container runtime.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := buildManager()
			if err != nil {
				return err
			}

			records, err := m.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println(SubtitleStyle.Render("No containers found."))
				return nil
			}
			for _, rec := range records {
				fmt.Println(labelStyle.Render("Name") + " " + ValueStyle.Render(rec.Name))
				fmt.Println(labelStyle.Render("ID") + " " + ValueStyle.Render(rec.ID))
				fmt.Println(labelStyle.Render("Image") + " " + ValueStyle.Render(rec.Image))
				fmt.Println(labelStyle.Render("Status") + " " + statusStyle(string(rec.Status)).Render(string(rec.Status)))
				fmt.Println()
			}
			return nil
		},
	}
)

func init() {
	stopCmd.Flags().DurationVarP(&stopGrace, "timeout", "t", 10*time.Second, "grace period before the container is killed")
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "force removal of a running container")
}
