// Package csvdata ingests the whitespace-tokenized numeric data files the
// CLI's fit/predict subcommands read (§6's wire-format paragraph). Despite
// the package name the format is not comma-separated: each row is a
// whitespace-separated run of numbers, matching the original source's own
// istringstream-based tokenizer.
package csvdata

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// File holds one ingested data file: an optional header (Columns, empty
// strings if the file had none) and every successfully parsed data row.
type File struct {
	Path    string
	Columns []string
	Rows    [][]float64
}

// ColumnsCount returns the number of columns every row in the file has.
func (f *File) ColumnsCount() int {
	return len(f.Columns)
}

// RowsCount returns the number of successfully parsed data rows.
func (f *File) RowsCount() int {
	return len(f.Rows)
}

// Load reads path and tokenizes every line. The first line is tried as a
// data row; if every token on it parses as a float, it is kept as the
// first row and Columns is left as a same-length slice of empty strings
// (no header present). Otherwise the first line is taken as the header
// and its tokens become Columns.
//
// Every subsequent line must tokenize to exactly ColumnsCount() floats; a
// short, long, or non-numeric row is logged and ends ingestion there,
// matching the original's "read csv error" abort — rows already read are
// still returned, with a nil error. A blank line also ends ingestion, but
// without a log line.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdata: %w", err)
	}
	defer fh.Close()

	f := &File{Path: path}
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return f, nil
	}
	first := strings.Fields(scanner.Text())
	if row, ok := parseRow(first); ok {
		f.Columns = make([]string, len(row))
		f.Rows = append(f.Rows, row)
	} else {
		f.Columns = first
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		tokens := strings.Fields(line)
		row, ok := parseRow(tokens)
		if !ok || len(row) != len(f.Columns) {
			slog.Error("csvdata: malformed row, stopping ingestion",
				"path", path, "row", len(f.Rows)+1, "want_columns", len(f.Columns), "got_tokens", len(tokens))
			break
		}
		f.Rows = append(f.Rows, row)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return f, fmt.Errorf("csvdata: %w", err)
	}
	return f, nil
}

func parseRow(tokens []string) ([]float64, bool) {
	row := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}
