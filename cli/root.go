package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "corpex",
		Short: "corpex - Boolean/wildcard/phrase full-text search engine",
		Long: `corpex builds and queries a full-text index supporting Boolean
expressions, exact phrases, proximity search, and wildcard patterns.

Get started:
  corpex build           Build an index from a directory of XML books
  corpex search          Evaluate a query against a built index
  corpex parquet-build   Build an index from a columnar (parquet) file
  corpex parquet-inspect  Print a parquet file's schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewBuild())
	root.AddCommand(NewSearch())
	root.AddCommand(NewParquetInspect())
	root.AddCommand(NewParquetBuild())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}
