// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"podsmith/internal/config"

	"github.com/spf13/cobra"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration operations",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, path, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{
				ConfigFilePath: cfgFile,
			})
			if err != nil {
				return err
			}

			source := path
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Println(TitleStyle.Render("podsmith configuration") + SubtitleStyle.Render(" ("+source+")"))
			fmt.Println(labelStyle.Render("Engine") + " " + string(loaded.Engine))
			fmt.Println(labelStyle.Render("Name prefix") + " " + loaded.NamePrefix)
			fmt.Println(labelStyle.Render("Cmd timeout") + " " + loaded.CommandTimeout().String())
			fmt.Println(labelStyle.Render("Settle") + " " + loaded.SettleInterval().String())
			if loaded.Remote() {
				fmt.Println(labelStyle.Render("SSH") + " " + fmt.Sprintf("%s@%s:%d", loaded.SSH.User, loaded.SSH.Host, loaded.SSH.Port))
				if loaded.SSH.KeyPath != "" {
					fmt.Println(labelStyle.Render("SSH key") + " " + loaded.SSH.KeyPath)
				}
			} else {
				fmt.Println(labelStyle.Render("SSH") + " " + SubtitleStyle.Render("not configured (local execution)"))
			}
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
}
