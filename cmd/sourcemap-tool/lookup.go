package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/MadAppGang/sourcemap/pkg/errors"
	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

func newLookupCmd() *cobra.Command {
	var line, col int
	var biasFlag string
	var withCode bool

	cmd := &cobra.Command{
		Use:   "lookup <map-file>",
		Short: "Resolve a generated position to its original source position",
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

			if biasFlag == "" {
				biasFlag = cfg.Bias
			}
			bias, err := parseBias(biasFlag)
			if err != nil {
				return err
			}

			if withCode {
				window := sourcemap.ContextWindow{LinesBefore: cfg.ContextLines, LinesAfter: cfg.ContextLines}
				result, ok := f.GetByGeneratedWithCode(line, col, bias, window)
				if !ok {
					return noMappingError(args[0], line, col)
				}
				printPosition(result.Position)
				for _, c := range result.CodeContext {
					fmt.Printf("  %4d | %s\n", c.LineNumber, c.Content)
				}
				return nil
			}

			result, ok := f.GetByGenerated(line, col, bias)
			if !ok {
				return noMappingError(args[0], line, col)
			}
			printPosition(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&line, "generated-line", 1, "1-based generated line")
	cmd.Flags().IntVar(&col, "generated-col", 1, "1-based generated column")
	cmd.Flags().StringVar(&biasFlag, "bias", "", "exact, floor, or ceil (default from config)")
	cmd.Flags().BoolVar(&withCode, "code", false, "include surrounding original source lines")
	return cmd
}

func printPosition(p sourcemap.Position) {
	fmt.Println(renderField("source", p.SourcePath))
	fmt.Println(renderField("position", fmt.Sprintf("%d:%d", p.SourceLine, p.SourceColumn)))
	if p.NameIndex.Present {
		fmt.Println(renderField("name", p.Name))
	}
}

func noMappingError(mapFile string, line, col int) error {
	return apperrors.NewEnhancedError("", 0, 0, fmt.Sprintf(
		"no mapping found at generated %d:%d in %s", line, col, mapFile))
}
