package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"parkcore/internal/catalog"
)

func newSpeciesCommand(_ *state) *cobra.Command {
	return &cobra.Command{
		Use:   "species",
		Short: "List the species catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SPECIES\tDIET\tWEIGHT")
			for _, s := range catalog.Default().List() {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Name, s.Diet, s.CompatibilityWeight)
			}
			return tw.Flush()
		},
	}
}

func newCompatCommand(st *state) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "compat SPECIES1 SPECIES2",
		Short: "Report whether two species may share a zone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = st.cfg.CompatMode
			}
			evaluator, err := catalog.NewEvaluator(catalog.Mode(mode), catalog.Default())
			if err != nil {
				return err
			}
			ok, err := evaluator.CanCoexist(args[0], args[1])
			if err != nil {
				return err
			}
			verdict := "incompatible"
			if ok {
				verdict = "compatible"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s + %s: %s\n", args[0], args[1], verdict)
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "heuristic or strict (overrides PARK_COMPAT_MODE)")
	return cmd
}
