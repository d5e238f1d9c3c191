package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wizenheimer/corpex"
)

func NewParquetInspect() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "parquet-inspect",
		Short: "Print a parquet file's schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, types, err := corpex.InspectSchema(input)
			if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}

			fmt.Printf("%s: %d columns\n", input, len(names))
			for i := range names {
				fmt.Printf("  %d: %s (%s)\n", i, names[i], types[i])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "parquet file to inspect")
	cmd.MarkFlagRequired("input")

	return cmd
}
