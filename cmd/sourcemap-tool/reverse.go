package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/MadAppGang/sourcemap/pkg/errors"
	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

func newReverseCmd() *cobra.Command {
	var line, col, sourceIndex int
	var biasFlag string

	cmd := &cobra.Command{
		Use:   "reverse <map-file>",
		Short: "Resolve an original source position to its generated position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			f, err := sourcemap.Parse(data)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}

			if sourceIndex < 0 || sourceIndex >= len(f.Sources()) {
				return fmt.Errorf("source index %d out of range (0..%d)", sourceIndex, len(f.Sources())-1)
			}

			if biasFlag == "" {
				biasFlag = cfg.Bias
			}
			bias, err := parseBias(biasFlag)
			if err != nil {
				return err
			}

			result, ok := f.GetByOriginal(line, col, sourceIndex, bias)
			if !ok {
				return apperrors.NewEnhancedError("", 0, 0, fmt.Sprintf(
					"no mapping found for original %s %d:%d", f.Sources()[sourceIndex], line, col))
			}

			fmt.Println(renderField("generated position", fmt.Sprintf("%d:%d", result.GeneratedLine, result.GeneratedColumn)))
			return nil
		},
	}

	cmd.Flags().IntVar(&line, "source-line", 1, "1-based original source line")
	cmd.Flags().IntVar(&col, "source-col", 1, "1-based original source column")
	cmd.Flags().IntVar(&sourceIndex, "source-index", 0, "index into the sources table")
	cmd.Flags().StringVar(&biasFlag, "bias", "", "exact, floor, or ceil (default from config)")
	return cmd
}
