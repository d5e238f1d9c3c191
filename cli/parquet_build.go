package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wizenheimer/corpex"
)

func NewParquetBuild() *cobra.Command {
	var input, output, formats string
	var useSPIMI bool
	var memoryLimitMB int64

	cmd := &cobra.Command{
		Use:   "parquet-build",
		Short: "Build an index from a columnar (parquet) file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start := time.Now()

			fmt.Printf("  [1/3] loading %s\n", input)
			docs, err := corpex.LoadTable(ctx, input)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			fmt.Printf("        %d documents loaded (%s)\n", len(docs), time.Since(start).Round(time.Millisecond))

			fmt.Println("  [2/3] building index")
			buildStart := time.Now()

			var idx *corpex.Index
			if useSPIMI {
				scratch, err := os.MkdirTemp("", "corpex-spimi-")
				if err != nil {
					return fmt.Errorf("scratch dir: %w", err)
				}
				defer os.RemoveAll(scratch)

				cfg := corpex.SPIMIConfig{
					MemoryBudgetBytes: memoryLimitMB * 1024 * 1024,
					ScratchDir:        scratch,
				}
				idx, err = corpex.BuildViaSPIMI(docs, cfg, 0, corpex.BuildOptions{UnknownTermPolicy: corpex.PropagateUnknownTerm})
				if err != nil {
					return fmt.Errorf("spimi build: %w", err)
				}
			} else {
				idx, err = corpex.Build(docs, corpex.BuildOptions{UnknownTermPolicy: corpex.PropagateUnknownTerm})
				if err != nil {
					return fmt.Errorf("build: %w", err)
				}
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

	cmd.Flags().StringVar(&input, "input", "", "parquet file to index")
	cmd.Flags().StringVar(&output, "output", "", "output index file prefix")
	cmd.Flags().StringVar(&formats, "formats", "binary", "dictionary dump formats: binary,json,text")
	cmd.Flags().BoolVar(&useSPIMI, "spimi", false, "build via the disk-spilling SPIMI dictionary builder")
	cmd.Flags().Int64Var(&memoryLimitMB, "memory-limit", 256, "SPIMI in-memory budget in MB (only with --spimi)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}
