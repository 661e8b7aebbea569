package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openmineral/confirmation/internal/assay"
	"github.com/openmineral/confirmation/internal/config"
	"github.com/openmineral/confirmation/internal/gemini"
	"github.com/openmineral/confirmation/internal/logging"
	"github.com/openmineral/confirmation/internal/prompt"
	"github.com/openmineral/confirmation/internal/suggest"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newParseAssayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-assay <file>",
		Short: "Extract Pb, Zn, Cu and Ag grades from a CSV, XLSX or XLS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			res, err := assay.Parse(filepath.Base(args[0]), f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			return printJSON(cmd, res)
		},
	}
}

func newSuggestCmd() *cobra.Command {
	var req suggest.Request
	var verbose bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Run one pricing suggestion with the configured model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := zerolog.Nop()
			if verbose {
				logger = logging.New(cmd.ErrOrStderr(), "debug", "console")
			}

			opts := []suggest.Option{
				suggest.WithLogger(logger),
				suggest.WithPrompt(prompt.LoadWithFallback(cfg.Suggestion.PromptPath, logger)),
			}
			if cfg.HasGemini() {
				gen, err := gemini.New(cfg.Gemini.APIKey,
					gemini.WithBaseURL(cfg.Gemini.BaseURL),
					gemini.WithModel(cfg.Gemini.Model),
					gemini.WithTimeout(cfg.Gemini.Timeout),
				)
				if err != nil {
					return err
				}
				opts = append(opts, suggest.WithGenerator(gen))
			}

			res, err := suggest.NewEngine(nil, opts...).Suggest(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&req.Material, "material", "", "material name or id")
	cmd.Flags().StringVar(&req.TreatmentCharge, "tc", "", "treatment charge in $/dmt")
	cmd.Flags().StringVar(&req.RefiningCharge, "rc", "", "refining charge in $/toz")
	cmd.Flags().StringVar(&req.DeliveryPoint, "delivery-point", "", "delivery point name or id")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log engine decisions to stderr")
	return cmd
}
