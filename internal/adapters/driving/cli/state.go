package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show stored trigger snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dump, err := store.DumpState(context.Background())
		if err != nil {
			return err
		}
		cmd.Println(dump)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
