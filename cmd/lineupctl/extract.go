package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/pl-lineup-bot/internal/app"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	"github.com/spf13/cobra"
)

type extractOutput struct {
	Observations int               `json:"observations"`
	Counters     int               `json:"counters"`
	Visited      int               `json:"visited"`
	Truncated    bool              `json:"truncated"`
	Recorded     bool              `json:"recorded"`
	Increments   []incrementOutput `json:"increments"`
}

type incrementOutput struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Delta    int64  `json:"delta"`
}

func toIncrementOutputs(in []positional.Increment) []incrementOutput {
	out := make([]incrementOutput, 0, len(in))
	for _, inc := range in {
		out = append(out, incrementOutput{Name: inc.Name, Position: inc.Position, Delta: inc.Delta})
	}
	return out
}

func newExtractCmd() *cobra.Command {
	var (
		subtree string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "extract <file|->",
		Short: "Extract (name, position) pairs from a JSON document and record them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}

			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			if path := strings.TrimSpace(subtree); path != "" {
				doc = positional.Subtree(doc, strings.Split(path, ".")...)
			}

			if dryRun {
				extraction := app.PositionalRule(cfg).Extract(doc)
				increments := positional.Aggregate(extraction.Observations)
				return printJSON(cmd, extractOutput{
					Observations: len(extraction.Observations),
					Counters:     len(increments),
					Visited:      extraction.Visited,
					Truncated:    extraction.Truncated,
					Increments:   toIncrementOutputs(increments),
				})
			}

			if err := requireDatabase(cfg); err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := app.OpenRecordStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := app.NewServices(cfg, store, logger).Baseline.RecordDocument(ctx, doc)
			if err != nil {
				return err
			}
			return printJSON(cmd, extractOutput{
				Observations: result.Observations,
				Counters:     result.Counters,
				Visited:      result.Visited,
				Truncated:    result.Truncated,
				Recorded:     true,
				Increments:   toIncrementOutputs(result.Increments),
			})
		},
	}
	cmd.Flags().StringVar(&subtree, "subtree", "", "dotted path to narrow extraction, e.g. content.lineup")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the extraction without touching the store")
	return cmd
}

func readDocument(cmd *cobra.Command, path string) (any, error) {
	var (
		body []byte
		err  error
	)
	if path == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var doc any
	if err := sonic.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", path, err)
	}
	return doc, nil
}
