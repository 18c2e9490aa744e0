package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"parkcore/internal/config"
	"parkcore/internal/core"
)

func newSeedCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate or apply seed files",
	}

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Apply a seed file to a scratch in-memory park and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := core.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			scratch := st.cfg
			scratch.Storage = config.StorageConfig{Driver: string(core.StorageMemory)}
			a, err := openApp(scratch, st.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			report, err := a.svc.ApplySeed(cmd.Context(), s)
			if err != nil {
				return fmt.Errorf("seed %s is invalid: %w", args[0], err)
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	var demo bool
	apply := &cobra.Command{
		Use:   "apply [FILE]",
		Short: "Apply a seed file (or the demo seed) to the configured store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s core.Seed
			switch {
			case len(args) == 1:
				loaded, err := core.LoadSeedFile(args[0])
				if err != nil {
					return err
				}
				s = loaded
			case demo:
				s = core.DemoSeed()
			default:
				return fmt.Errorf("a seed file or --demo is required")
			}
			a, err := openApp(st.cfg, st.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			report, err := a.svc.ApplySeed(cmd.Context(), s)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	apply.Flags().BoolVar(&demo, "demo", false, "apply the built-in demo park")

	cmd.AddCommand(validate, apply)
	return cmd
}
