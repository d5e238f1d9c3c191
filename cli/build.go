package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/wizenheimer/corpex"
)

func NewBuild() *cobra.Command {
	var input, output, formats string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an index from a directory of XML books",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			fmt.Printf("  [1/3] loading %s\n", input)
			docs, err := corpex.LoadXMLDirectory(input)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			fmt.Printf("        %d documents loaded (%s)\n", len(docs), time.Since(start).Round(time.Millisecond))

			fmt.Println("  [2/3] building index")
			buildStart := time.Now()
			idx, err := corpex.Build(docs, corpex.BuildOptions{UnknownTermPolicy: corpex.PropagateUnknownTerm})
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}
			fmt.Printf("        %d terms, %d documents (%s)\n", idx.Dictionary.Size(), idx.Corpus.Size(), time.Since(buildStart).Round(time.Millisecond))

			fmt.Printf("  [3/3] writing %s*\n", output)
			if err := corpex.SaveSelected(idx, output, splitFormats(formats)); err != nil {
				return fmt.Errorf("save: %w", err)
			}

			fmt.Printf("done in %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "directory of XML books to index")
	cmd.Flags().StringVar(&output, "output", "", "output index file prefix")
	cmd.Flags().StringVar(&formats, "formats", "binary", "dictionary dump formats: binary,json,text")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

func splitFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
