package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mealscope/enrich-cli/internal/detect"
	"github.com/mealscope/enrich-cli/internal/provider"
)

var analyzeMIME string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image-file>",
	Short: "Detect catalog items in a meal image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		image, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read image %s", args[0])
		}

		mime := analyzeMIME
		if mime == "" {
			mime = http.DetectContentType(image)
		}

		extractor, err := provider.NewExtractor(cfg)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		analyzer := detect.NewAnalyzer(st, extractor, cfg)
		result, err := analyzer.Analyze(ctx, image, mime)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeMIME, "mime", "", "image MIME type (default: sniffed from content)")
	rootCmd.AddCommand(analyzeCmd)
}
