package corpex

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ═══════════════════════════════════════════════════════════════════════════════
// COLUMNAR (PARQUET) LOADER
// ═══════════════════════════════════════════════════════════════════════════════
// Infers a text column and an id column from a parquet schema by name, the
// same heuristic order a hand-rolled schema inspector would use: an exact
// name match on text/content/body wins outright, a column whose name merely
// contains "id" is the identifier, and if no text-shaped column exists the
// first Utf8/LargeUtf8 column is used instead. A row lacking a usable text
// value is skipped (a BuildInputError case, not a hard failure).
// ═══════════════════════════════════════════════════════════════════════════════

// TableColumns names the inferred id/text columns of a parquet schema.
type TableColumns struct {
	TextIndex int
	IDIndex   int // -1 if no id column was found; rows fall back to a synthetic id
}

var textColumnNames = []string{"text", "content", "body"}

// InspectSchema opens path and returns its column names and Arrow types,
// for the parquet-inspect subcommand.
func InspectSchema(path string) ([]string, []string, error) {
	rdr, err := openParquet(path)
	if err != nil {
		return nil, nil, err
	}
	defer rdr.ParquetReader().Close()

	schema, err := rdr.Schema()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading schema: %v", ErrBuildInput, err)
	}

	names := make([]string, schema.NumFields())
	types := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
		types[i] = field.Type.String()
	}
	return names, types, nil
}

// inferColumns picks the text and id columns from an Arrow schema by name
// heuristic, falling back to the first Utf8/LargeUtf8 column for text.
func inferColumns(schema *arrow.Schema) (TableColumns, error) {
	cols := TableColumns{TextIndex: -1, IDIndex: -1}

	for i, field := range schema.Fields() {
		lower := strings.ToLower(field.Name)
		if cols.TextIndex == -1 && containsAny(lower, textColumnNames) {
			cols.TextIndex = i
			continue
		}
		if cols.IDIndex == -1 && strings.Contains(lower, "id") {
			cols.IDIndex = i
		}
	}

	if cols.TextIndex == -1 {
		for i, field := range schema.Fields() {
			if isStringType(field.Type) {
				if cols.TextIndex == -1 {
					cols.TextIndex = i
				} else if cols.IDIndex == -1 {
					cols.IDIndex = i
				}
			}
		}
	}

	if cols.TextIndex == -1 {
		return cols, fmt.Errorf("%w: no text column found in parquet schema", ErrBuildInput)
	}
	return cols, nil
}

func containsAny(name string, candidates []string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

func isStringType(t arrow.DataType) bool {
	return t.ID() == arrow.STRING || t.ID() == arrow.LARGE_STRING
}

func openParquet(path string) (*pqarrow.FileReader, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrBuildInput, path, err)
	}

	rdr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		pf.Close()
		return nil, fmt.Errorf("%w: %v", ErrBuildInput, err)
	}
	return rdr, nil
}

// LoadTable streams every row of the parquet file at path as a Document,
// inferring the text/id columns from the schema. Rows with no usable text
// value are skipped and logged, never aborting the load.
func LoadTable(ctx context.Context, path string) ([]Document, error) {
	rdr, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer rdr.ParquetReader().Close()

	schema, err := rdr.Schema()
	if err != nil {
		return nil, fmt.Errorf("%w: reading schema: %v", ErrBuildInput, err)
	}

	cols, err := inferColumns(schema)
	if err != nil {
		return nil, err
	}

	numRowGroups := rdr.ParquetReader().NumRowGroups()
	rowGroups := make([]int, numRowGroups)
	for i := range rowGroups {
		rowGroups[i] = i
	}

	recordReader, err := rdr.GetRecordReader(ctx, []int{cols.TextIndex, maxInt(cols.IDIndex, 0)}, rowGroups)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildInput, err)
	}
	defer recordReader.Release()

	var docs []Document
	var skipped int
	rowNum := 0

	for recordReader.Next() {
		rec := recordReader.Record()
		docs, skipped = appendRecordDocuments(docs, rec, cols, &rowNum, skipped)
	}
	if err := recordReader.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildInput, err)
	}

	slog.Info("table loaded", slog.String("path", path), slog.Int("documents", len(docs)), slog.Int("skipped", skipped))
	return docs, nil
}

// stringValuer is satisfied by both array.String and array.LargeString,
// which otherwise share no common interface for value access.
type stringValuer interface {
	arrow.Array
	Value(int) string
}

func appendRecordDocuments(docs []Document, rec arrow.Record, cols TableColumns, rowNum *int, skipped int) ([]Document, int) {
	textCol, _ := rec.Column(0).(stringValuer)

	var idCol arrow.Array
	if cols.IDIndex >= 0 && rec.NumCols() > 1 {
		idCol = rec.Column(1)
	}

	for i := 0; i < int(rec.NumRows()); i++ {
		*rowNum++
		if textCol == nil || textCol.IsNull(i) {
			skipped++
			continue
		}
		text := textCol.Value(i)

		id := fmt.Sprintf("doc_%d", *rowNum)
		if idCol != nil {
			if resolved, ok := rowID(idCol, i); ok {
				id = resolved
			}
		}

		docs = append(docs, Document{ID: id, Text: text})
	}
	return docs, skipped
}

func rowID(a arrow.Array, i int) (string, bool) {
	if a.IsNull(i) {
		return "", false
	}
	switch col := a.(type) {
	case *array.String:
		return col.Value(i), true
	case *array.LargeString:
		return col.Value(i), true
	case *array.Int64:
		return strconv.FormatInt(col.Value(i), 10), true
	case *array.Int32:
		return strconv.FormatInt(int64(col.Value(i)), 10), true
	default:
		return "", false
	}
}
