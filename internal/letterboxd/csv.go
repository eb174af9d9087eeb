// Package letterboxd reads and writes the delimited-text dialect accepted by
// the Letterboxd diary importer.
//
// The dialect differs from RFC 4180: embedded quotes are escaped with a
// backslash instead of being doubled, and a value is quoted only when it
// contains the delimiter or an escaped quote.
package letterboxd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/letterplex/internal/domain"
)

const (
	delimiter    = ","
	quote        = `"`
	escapedQuote = `\"`
)

// ErrUnterminatedQuote is returned when a quoted value has no closing quote
var ErrUnterminatedQuote = errors.New("unterminated quoted value")

// FormatValue renders a single value: line breaks folded to spaces, trimmed,
// quotes backslash-escaped, and wrapped in quotes iff it contains the delimiter
// or an escaped quote.
func FormatValue(value string) string {
	value = domain.CleanText(value)
	value = strings.ReplaceAll(value, quote, escapedQuote)
	if strings.Contains(value, delimiter) || strings.Contains(value, escapedQuote) {
		value = quote + value + quote
	}
	return value
}

// FormatRow renders one line (without line ending) for row in the given field order.
// Fields absent from row render as empty values.
func FormatRow(fields []string, row map[string]string) string {
	values := make([]string, len(fields))
	for i, field := range fields {
		values[i] = FormatValue(row[field])
	}
	return strings.Join(values, delimiter)
}

// Header renders the header line for fields
func Header(fields []string) string {
	return strings.Join(fields, delimiter)
}

// Write writes a header line followed by one line per row, LF terminated
func Write(w io.Writer, fields []string, rows []map[string]string) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header(fields) + "\n"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := bw.WriteString(FormatRow(fields, row) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteRecords writes records using the fixed Letterboxd column order
func WriteRecords(w io.Writer, records []domain.MovieRecord) error {
	rows := make([]map[string]string, len(records))
	for i, rec := range records {
		rows[i] = rec.Fields()
	}
	return Write(w, domain.RecordFields, rows)
}

// WriteFile overwrites path with records, creating its directory if needed
func WriteFile(path string, records []domain.MovieRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteRecords(f, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// ParseLine splits one line of the dialect into its values.
// Inside quotes `\"` decodes to a quote and a bare quote closes the value.
// A quoted value ending in a backslash is written as `...\"`; when reading
// `\"` as an escape leaves the line unparseable, a `\"` before a delimiter or
// the end of the line is read as a literal backslash and the closing quote.
func ParseLine(line string) ([]string, error) {
	return parseFields(line, 0, nil, 0)
}

// quotedValue is one possible reading of a quoted value
type quotedValue struct {
	value string
	next  int // index just past the closing quote
}

// parseFields parses line from i onward, appending to values.
// want > 0 requires exactly that many values in total.
func parseFields(line string, i int, values []string, want int) ([]string, error) {
	if i < len(line) && line[i] == '"' {
		readings, err := readQuoted(line, i+1)
		if err != nil {
			return nil, err
		}
		var firstErr error
		for _, r := range readings {
			got, err := finishField(line, r.next, values, r.value, want)
			if err == nil {
				return got, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, firstErr
	}

	var b strings.Builder
	for i < len(line) && line[i] != ',' {
		if line[i] == '\\' && i+1 < len(line) && line[i+1] == '"' {
			b.WriteByte('"')
			i += 2
			continue
		}
		b.WriteByte(line[i])
		i++
	}
	return finishField(line, i, values, b.String(), want)
}

// finishField appends value and continues after the delimiter at i, if any
func finishField(line string, i int, values []string, value string, want int) ([]string, error) {
	if i < len(line) && line[i] != ',' {
		return nil, fmt.Errorf("unexpected character %q after closing quote at column %d", line[i], i+1)
	}

	next := make([]string, len(values), len(values)+1)
	copy(next, values)
	next = append(next, value)

	if i >= len(line) {
		if want > 0 && len(next) != want {
			return nil, fmt.Errorf("expected %d values, got %d", want, len(next))
		}
		return next, nil
	}
	return parseFields(line, i+1, next, want)
}

// readQuoted returns the readings of the quoted value starting at i,
// preferred first: escapes as quotes, then each trailing-backslash close.
func readQuoted(line string, i int) ([]quotedValue, error) {
	var (
		b        strings.Builder
		fallback []quotedValue
	)
	for i < len(line) {
		if line[i] == '\\' && i+1 < len(line) && line[i+1] == '"' {
			if i+2 == len(line) || line[i+2] == ',' {
				fallback = append(fallback, quotedValue{value: b.String() + `\`, next: i + 2})
			}
			b.WriteByte('"')
			i += 2
			continue
		}
		if line[i] == '"' {
			return append([]quotedValue{{value: b.String(), next: i + 1}}, fallback...), nil
		}
		b.WriteByte(line[i])
		i++
	}
	if len(fallback) == 0 {
		return nil, ErrUnterminatedQuote
	}
	return fallback, nil
}

// Read parses a file written by Write. Columns are matched by header name,
// so column order is free; unknown columns are ignored.
func Read(r io.Reader) ([]domain.MovieRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		header  []string
		records []domain.MovieRecord
		lineNum int
	)

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		values, err := parseFields(line, 0, nil, len(header))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		if header == nil {
			header = values
			continue
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = values[i]
		}
		records = append(records, domain.RecordFromFields(row))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
