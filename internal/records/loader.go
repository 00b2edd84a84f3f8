package records

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"catalog_sync/internal/adapters/opener"
	"catalog_sync/internal/ports"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Loader reads named record collections from a base location.
type Loader struct {
	Opener  ports.FileOpener
	BaseDir string
	Log     zerolog.Logger
}

func NewLoader(op ports.FileOpener, baseDir string, log zerolog.Logger) *Loader {
	return &Loader{Opener: op, BaseDir: baseDir, Log: log.With().Str("component", "records").Logger()}
}

// Load opens BaseDir/name and decodes it into records, keeping file order.
func (l *Loader) Load(ctx context.Context, name string) ([]Record, error) {
	loc := opener.Join(l.BaseDir, name)

	rc, meta, err := l.Opener.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []Record
	switch detectFormat(loc, meta.ContentType) {
	case "xlsx":
		out, err = decodeXLSX(rc)
	default:
		out, err = decodeJSON(rc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", loc, err)
	}

	l.Log.Debug().
		Str("location", loc).
		Str("source", meta.Source).
		Int("records", len(out)).
		Msg("[RECORDS] loaded")
	return out, nil
}

func decodeJSON(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	dec := json.NewDecoder(br)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("expected a JSON array, got %v", tok)
	}

	out := make([]Record, 0)
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeXLSX reads the first sheet; the first row holds field names.
func decodeXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	if !rows.Next() {
		return out, rows.Error()
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(out)+2, err)
		}
		if isBlank(cols) {
			continue
		}
		out = append(out, toRecord(header, cols))
	}
	return out, rows.Error()
}

func toRecord(header, row []string) Record {
	rec := make(Record, len(header))
	for i, key := range header {
		key = strings.TrimSpace(key)
		if key == "" || i >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[i])
		if val == "" {
			continue
		}
		rec[key] = val
	}
	return rec
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func detectFormat(loc, contentType string) string {
	if strings.EqualFold(path.Ext(loc), ".xlsx") {
		return "xlsx"
	}
	if strings.HasPrefix(contentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet") {
		return "xlsx"
	}
	return "json"
}
