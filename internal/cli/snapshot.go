package cli

import (
	"github.com/spf13/cobra"

	"parkcore/internal/blob"
	"parkcore/internal/core"
)

func newSnapshotCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Archive and restore park state in blob storage",
	}

	var exportKey string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the configured store's state to a new archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bs, err := blob.Open(cmd.Context(), st.cfg.BlobStoreConfig())
			if err != nil {
				return err
			}
			a, err := openApp(st.cfg, st.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			info, err := a.svc.ExportSnapshot(cmd.Context(), bs, exportKey)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), info)
		},
	}
	export.Flags().StringVar(&exportKey, "key", "", "archive key (default derived from the current time)")

	var importKey string
	restore := &cobra.Command{
		Use:   "import",
		Short: "Replace the configured store's state with an archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bs, err := blob.Open(cmd.Context(), st.cfg.BlobStoreConfig())
			if err != nil {
				return err
			}
			a, err := openApp(st.cfg, st.logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			snap, err := a.svc.ImportSnapshot(cmd.Context(), bs, importKey)
			if err != nil {
				return err
			}
			dinosaurs := 0
			for _, z := range snap.Zones {
				dinosaurs += len(z.Dinosaurs)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{"zones": len(snap.Zones), "dinosaurs": dinosaurs})
		},
	}
	restore.Flags().StringVar(&importKey, "key", "", "archive key (default the most recent)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bs, err := blob.Open(cmd.Context(), st.cfg.BlobStoreConfig())
			if err != nil {
				return err
			}
			infos, err := bs.List(cmd.Context(), core.SnapshotPrefix)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), infos)
		},
	}

	cmd.AddCommand(export, restore, list)
	return cmd
}
