package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the park summary of the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(st.cfg, st.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			status, err := a.svc.ParkStatus(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), status)
		},
	}
}
