package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/sensu-pagerduty-handler/pkg/config"
)

func newVersionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit, and build time of sensu-pagerduty-handler.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "json" {
				data, err := json.MarshalIndent(config.GetBuildInfo(), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.VersionString())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "plain", "output format (plain, json)")

	return cmd
}
