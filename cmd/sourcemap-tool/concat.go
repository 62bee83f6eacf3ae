package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

func newConcatCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "concat <map-file> [more-map-files...]",
		Short: "Concatenate source maps in order, rebasing indices as generated files are stacked",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			head, err := parseMapFile(args[0])
			if err != nil {
				return err
			}

			rest := make([]*sourcemap.Facade, 0, len(args)-1)
			for _, path := range args[1:] {
				f, err := parseMapFile(path)
				if err != nil {
					return err
				}
				rest = append(rest, f)
			}

			if err := head.Concat(rest...); err != nil {
				return fmt.Errorf("concatenating: %w", err)
			}

			data, err := head.ToJSON()
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}

			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			logger.Infof("wrote composed map to %s (%d generated lines)", output, head.GeneratedLineCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the composed map here instead of stdout")
	return cmd
}

func parseMapFile(path string) (*sourcemap.Facade, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := sourcemap.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return f, nil
}
