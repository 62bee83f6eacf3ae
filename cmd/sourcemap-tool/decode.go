package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <map-file>",
		Short: "Parse a Source Map v3 document and print its envelope and generated line count",
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

			fmt.Println(headerStyle.Render(args[0]))
			fmt.Println(renderField("version", fmt.Sprint(f.Version())))
			if f.File() != "" {
				fmt.Println(renderField("file", f.File()))
			}
			if f.SourceRoot() != "" {
				fmt.Println(renderField("sourceRoot", f.SourceRoot()))
			}
			fmt.Println(renderField("sources", fmt.Sprint(f.Sources())))
			if len(f.Names()) > 0 {
				fmt.Println(renderField("names", fmt.Sprint(f.Names())))
			}
			fmt.Println(renderField("generated lines", fmt.Sprint(f.GeneratedLineCount())))

			logger.Debugf("decoded %s: %d generated lines, %d sources, %d names",
				args[0], f.GeneratedLineCount(), len(f.Sources()), len(f.Names()))
			return nil
		},
	}
	return cmd
}
