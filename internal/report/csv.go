package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrEmptyInput is returned by WriteCSV when there are no rows, since there
// is no header to derive.
var ErrEmptyInput = errors.New("no rows to write")

// WriteCSV writes rows to path with a header taken from the first row.
// Cell values must be nil, string, int64 or finite float64; those are the
// types ReadCSV returns, so a written file reads back to equal rows.
// Strings are always double-quoted and numbers never are. The file is
// replaced atomically.
func WriteCSV(path string, rows []Row) error {
	f, err := StageCSV(path, rows)
	if err != nil {
		return err
	}
	defer f.Discard()
	return f.Commit()
}

// StagedFile is a fully written temporary file next to its destination.
// Nothing is visible at the destination until Commit.
type StagedFile struct {
	path      string
	tmpName   string
	committed bool
}

// StageCSV encodes rows like WriteCSV into a temporary file beside path.
// The caller must Commit or Discard the result.
func StageCSV(path string, rows []Row) (*StagedFile, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("writing %s: %w", path, ErrEmptyInput)
	}

	header := rows[0].Names()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	staged := &StagedFile{path: path, tmpName: tmp.Name()}

	fail := func(err error) (*StagedFile, error) {
		_ = tmp.Close()
		staged.Discard()
		return nil, err
	}

	bw := bufio.NewWriter(tmp)
	if err := encodeRows(bw, header, rows); err != nil {
		return fail(fmt.Errorf("writing %s: %w", path, err))
	}
	if err := bw.Flush(); err != nil {
		return fail(fmt.Errorf("flushing %s: %w", path, err))
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(fmt.Errorf("setting mode on %s: %w", path, err))
	}
	if err := tmp.Close(); err != nil {
		staged.Discard()
		return nil, fmt.Errorf("closing %s: %w", path, err)
	}
	return staged, nil
}

// Path returns the destination of the staged file.
func (f *StagedFile) Path() string {
	return f.path
}

// Commit renames the staged file into place.
func (f *StagedFile) Commit() error {
	if err := os.Rename(f.tmpName, f.path); err != nil {
		return fmt.Errorf("renaming into %s: %w", f.path, err)
	}
	f.committed = true
	return nil
}

// Discard removes the temporary file. It is a no-op after Commit and on nil.
func (f *StagedFile) Discard() {
	if f == nil || f.committed {
		return
	}
	_ = os.Remove(f.tmpName)
}

func encodeRows(w io.Writer, header []string, rows []Row) error {
	fields := make([]string, len(header))
	for i, name := range header {
		fields[i] = quote(name)
	}
	if err := writeLine(w, fields); err != nil {
		return err
	}

	for n, row := range rows {
		for _, c := range row {
			if !contains(header, c.Name) {
				return fmt.Errorf("row %d: field %q not in header", n+1, c.Name)
			}
		}
		for i, name := range header {
			value, ok := row.Get(name)
			if !ok {
				// missing cells are written as empty strings
				fields[i] = quote("")
				continue
			}
			field, err := encodeField(value)
			if err != nil {
				return fmt.Errorf("row %d, field %q: %w", n+1, name, err)
			}
			fields[i] = field
		}
		if err := writeLine(w, fields); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, fields []string) error {
	_, err := io.WriteString(w, strings.Join(fields, ",")+"\n")
	return err
}

func encodeField(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return quote(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", fmt.Errorf("non-finite float %v", x)
		}
		return formatFloat(x), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// formatFloat keeps a decimal point on integral values so the reader parses
// them back as floats.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// ReadCSV parses a file written by WriteCSV. Quoted fields come back as
// strings, bare integers as int64, other bare numbers as float64 and empty
// bare fields as nil.
func ReadCSV(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rows, err := decodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

type rawField struct {
	text   string
	quoted bool
}

func decodeRows(data []byte) ([]Row, error) {
	records, err := splitRecords(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	header := make([]string, len(records[0]))
	for i, f := range records[0] {
		header[i] = f.text
	}

	rows := make([]Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		if len(header) > 1 && isBlank(rec) {
			continue
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("record %d: got %d fields, header has %d", n+1, len(rec), len(header))
		}
		row := make(Row, len(rec))
		for i, f := range rec {
			value, err := decodeField(f)
			if err != nil {
				return nil, fmt.Errorf("record %d, field %q: %w", n+1, header[i], err)
			}
			row[i] = Cell{Name: header[i], Value: value}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeField(f rawField) (any, error) {
	if f.quoted {
		return f.text, nil
	}
	if f.text == "" {
		return nil, nil
	}
	if i, err := strconv.ParseInt(f.text, 10, 64); err == nil {
		return i, nil
	}
	if fl, err := strconv.ParseFloat(f.text, 64); err == nil {
		return fl, nil
	}
	return nil, fmt.Errorf("unquoted non-numeric value %q", f.text)
}

// splitRecords tokenizes RFC 4180 style input, keeping track of which
// fields were quoted. A blank line is a record with one empty bare field.
func splitRecords(data []byte) ([][]rawField, error) {
	var records [][]rawField
	line := 1
	p := 0

	for p < len(data) {
		var rec []rawField
		for {
			var f rawField
			if p < len(data) && data[p] == '"' {
				p++
				var sb strings.Builder
				closed := false
				for p < len(data) {
					c := data[p]
					if c == '"' {
						if p+1 < len(data) && data[p+1] == '"' {
							sb.WriteByte('"')
							p += 2
							continue
						}
						p++
						closed = true
						break
					}
					if c == '\n' {
						line++
					}
					sb.WriteByte(c)
					p++
				}
				if !closed {
					return nil, fmt.Errorf("line %d: unterminated quoted field", line)
				}
				if p < len(data) && !isDelimiter(data[p]) {
					return nil, fmt.Errorf("line %d: unexpected %q after quoted field", line, data[p])
				}
				f = rawField{text: sb.String(), quoted: true}
			} else {
				start := p
				for p < len(data) && !isDelimiter(data[p]) {
					if data[p] == '"' {
						return nil, fmt.Errorf("line %d: bare quote in unquoted field", line)
					}
					p++
				}
				f = rawField{text: string(data[start:p])}
			}

			rec = append(rec, f)
			if p < len(data) && data[p] == ',' {
				p++
				continue
			}
			break
		}

		if p < len(data) && data[p] == '\r' {
			p++
		}
		if p < len(data) && data[p] == '\n' {
			p++
		}
		line++

		records = append(records, rec)
	}

	return records, nil
}

func isBlank(rec []rawField) bool {
	return len(rec) == 1 && !rec[0].quoted && rec[0].text == ""
}

func isDelimiter(c byte) bool {
	return c == ',' || c == '\n' || c == '\r'
}
