package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wizenheimer/corpex"
)

func NewSearch() *cobra.Command {
	var query, dict string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Evaluate a query against a built index",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := corpex.LoadIndex(dict, corpex.PropagateUnknownTerm)
			if err != nil {
				return fmt.Errorf("load index: %w", err)
			}

			results, err := idx.Evaluator.Evaluate(query)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			fmt.Printf("%d matching documents\n", len(results))
			for _, name := range results {
				fmt.Println(" ", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "query string to evaluate")
	cmd.Flags().StringVar(&dict, "dict", "", "index file prefix to load")
	cmd.MarkFlagRequired("query")
	cmd.MarkFlagRequired("dict")

	return cmd
}
