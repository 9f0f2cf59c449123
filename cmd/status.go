package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show embedding coverage of the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		total, err := st.CountItems(ctx)
		if err != nil {
			return err
		}
		embedded, err := st.CountEmbedded(ctx)
		if err != nil {
			return err
		}

		out := struct {
			Total    int `json:"total"`
			Embedded int `json:"embedded"`
			Missing  int `json:"missing"`
		}{Total: total, Embedded: embedded, Missing: total - embedded}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
