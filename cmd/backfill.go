package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealscope/enrich-cli/internal/backfill"
	"github.com/mealscope/enrich-cli/internal/provider"
)

var backfillMaxProcess int

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generate missing embeddings for catalog items",
	Long:  "Resolves catalog items without an embedding and processes up to the per-run cap, reporting how many remain so the command can be re-run to continue.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		embedder, err := provider.NewEmbedder(cfg)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		job := backfill.NewJob(st, embedder, cfg)
		progress, err := job.Run(ctx, backfillMaxProcess)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(progress)
	},
}

func init() {
	backfillCmd.Flags().IntVar(&backfillMaxProcess, "max-process", 0, "items to process this run (default from config, ceiling 500)")
	rootCmd.AddCommand(backfillCmd)
}
