package record

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat is returned by ReadFile for extensions other than
// .json and .csv.
var ErrUnsupportedFormat = errors.New("record: unsupported file format")

// missing cell spellings produced by common dataframe exports.
var nullCells = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"None": true,
}

// TextColumns are kept as strings even when their cells look numeric.
// Station codes such as "15013" are identifiers, not quantities.
var TextColumns = map[string]bool{
	"code":         true,
	"station_code": true,
	"date":         true,
	"horizon_type": true,
	"model_type":   true,
}

// ReadCSV reads a header row followed by data rows. Each row becomes one
// record whose fields follow the header order. Missing cells become null,
// integer and float cells become numbers unless the column is one of
// TextColumns, everything else stays a string.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := make([]Record, 0)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		rec := Record{fields: make([]Field, 0, len(header))}
		for i, name := range header {
			if TextColumns[name] {
				rec.Set(name, textCell(row[i]))
				continue
			}
			rec.Set(name, parseCell(row[i]))
		}
		records = append(records, rec)
	}
	return records, nil
}

func textCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if nullCells[cell] {
		return nil
	}
	return cell
}

func parseCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if nullCells[cell] {
		return nil
	}
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		if checkFinite(f) != nil {
			return nil
		}
		return f
	}
	return cell
}

// ReadJSON reads either a JSON array of objects or an object carrying the
// array under "data".
func ReadJSON(r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		if env.Data == nil {
			return nil, errors.New(`record: object input must carry a "data" array`)
		}
		trimmed = env.Data
	}
	return DecodeList(trimmed)
}

// ReadFile loads records from a .json or .csv file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Supported reports whether ReadFile understands the file extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".csv":
		return true
	}
	return false
}
