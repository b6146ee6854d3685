package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/monitoring"
	"go-sqa-metrics/pkg/utils"
)

// maxReportBytes caps how much of a report is read into memory.
const maxReportBytes = 64 << 20

// RowSource turns a stored report handle into rows. Any failure is returned as
// a *model.SourceFetchError; a report that decodes to no rows is not an error.
type RowSource interface {
	FetchRows(ctx context.Context, handle string) (model.Dataset, error)
}

// FileSource reads reports from files below Dir.
type FileSource struct {
	Dir string
}

func (s *FileSource) FetchRows(ctx context.Context, handle string) (model.Dataset, error) {
	path, err := utils.ResolveWithin(s.Dir, handle)
	if err != nil {
		return model.Dataset{}, &model.SourceFetchError{Handle: handle, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return model.Dataset{}, &model.SourceFetchError{Handle: handle, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, &model.SourceFetchError{Handle: handle, Err: err}
	}
	defer f.Close()

	ds, err := Decode(utils.GetFileType(handle), io.LimitReader(f, maxReportBytes))
	if err != nil {
		return model.Dataset{}, &model.SourceFetchError{Handle: handle, Err: err}
	}
	monitoring.Logf("📄 %s: %d rows read", handle, ds.Len())
	return ds, nil
}

// HTTPSource downloads reports over HTTP(S).
type HTTPSource struct {
	Client *http.Client
}

func (s *HTTPSource) FetchRows(ctx context.Context, url string) (model.Dataset, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Dataset{}, &model.SourceFetchError{Handle: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return model.Dataset{}, &model.SourceFetchError{Handle: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.Dataset{}, &model.SourceFetchError{Handle: url, Err: &StatusError{Code: resp.StatusCode, Status: resp.Status}}
	}

	kind := utils.GetFileType(url)
	if kind == "unknown" {
		kind = kindFromContentType(resp.Header.Get("Content-Type"))
	}
	ds, err := Decode(kind, io.LimitReader(resp.Body, maxReportBytes))
	if err != nil {
		return model.Dataset{}, &model.SourceFetchError{Handle: url, Err: err}
	}
	monitoring.Logf("🌐 %s: %d rows read", url, ds.Len())
	return ds, nil
}

// MultiSource sends http(s) handles to HTTP, retried per Retry, and
// everything else to Files.
type MultiSource struct {
	Files *FileSource
	HTTP  *HTTPSource
	Retry model.RetryConfig
}

// NewRowSource builds the default source for reports stored under dataDir.
func NewRowSource(dataDir string, timeout time.Duration) *MultiSource {
	return &MultiSource{
		Files: &FileSource{Dir: dataDir},
		HTTP:  &HTTPSource{Client: &http.Client{Timeout: timeout}},
		Retry: model.DefaultRetryConfig(),
	}
}

func (s *MultiSource) FetchRows(ctx context.Context, handle string) (model.Dataset, error) {
	lower := strings.ToLower(handle)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return (&RetryingSource{Source: s.HTTP, Config: s.Retry}).FetchRows(ctx, handle)
	}
	return s.Files.FetchRows(ctx, handle)
}

// Decode parses a report of the given kind ("csv", "excel", "json").
func Decode(kind string, r io.Reader) (model.Dataset, error) {
	switch kind {
	case "csv":
		return DecodeCSV(r)
	case "excel":
		return DecodeXLSX(r)
	case "json":
		return DecodeJSON(r)
	}
	return model.Dataset{}, fmt.Errorf("unsupported report format %q", kind)
}

// DecodeCSV reads a CSV report whose first record is the header.
func DecodeCSV(r io.Reader) (model.Dataset, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return model.NewDataset(nil, nil), nil
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Dataset{}, fmt.Errorf("CSV read error: %w", err)
		}
		records = append(records, record)
	}
	return tableToDataset(header, records), nil
}

// DecodeXLSX reads the first sheet of a workbook; its first row is the header.
func DecodeXLSX(r io.Reader) (model.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.NewDataset(nil, nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return model.NewDataset(nil, nil), nil
	}
	return tableToDataset(rows[0], rows[1:]), nil
}

// DecodeJSON reads an array of flat objects, keeping the key order of the
// document as the column order.
func DecodeJSON(r io.Reader) (model.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return model.Dataset{}, err
	}
	var columns []string
	seen := make(map[string]bool)
	rows := []model.Row{}
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return model.Dataset{}, err
		}
		row := make(model.Row)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return model.Dataset{}, fmt.Errorf("failed to decode JSON: %w", err)
			}
			key, ok := tok.(string)
			if !ok {
				return model.Dataset{}, fmt.Errorf("failed to decode JSON: unexpected key %v", tok)
			}
			var raw interface{}
			if err := dec.Decode(&raw); err != nil {
				return model.Dataset{}, fmt.Errorf("failed to decode JSON value for %q: %w", key, err)
			}
			key = cleanHeader(key)
			row[key] = jsonScalar(raw)
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return model.Dataset{}, err
		}
		rows = append(rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return model.Dataset{}, err
	}
	return model.NewDataset(columns, rows), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("failed to decode JSON: expected %q, got %v", want, tok)
	}
	return nil
}

// jsonScalar keeps strings, numbers and booleans; nested values are flattened
// to their JSON text.
func jsonScalar(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, string, bool:
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		return string(b)
	}
}

func tableToDataset(header []string, records [][]string) model.Dataset {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = cleanHeader(h)
		if i == 0 {
			columns[i] = strings.TrimPrefix(columns[i], "\ufeff")
		}
		if columns[i] == "" {
			columns[i] = fmt.Sprintf("Column %d", i+1)
		}
	}

	rows := make([]model.Row, 0, len(records))
	for _, record := range records {
		if blankRecord(record) {
			continue
		}
		row := make(model.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = utils.ParseValue(record[i])
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}
	return model.NewDataset(columns, rows)
}

// cleanHeader trims whitespace and removes quotes from a header cell.
func cleanHeader(h string) string {
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func kindFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "csv"):
		return "csv"
	case strings.Contains(ct, "spreadsheetml"), strings.Contains(ct, "excel"):
		return "excel"
	}
	return "unknown"
}
