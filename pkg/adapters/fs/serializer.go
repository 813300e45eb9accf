package fs

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/kiln/pkg/core"
)

// Encoder defines how built records are written in a specific format.
type Encoder interface {
	// Encode writes records to w.
	Encode(w io.Writer, records []*core.Record) error
}

// DefaultEncoders returns the standard set of encoders keyed by format name.
func DefaultEncoders() map[string]Encoder {
	return map[string]Encoder{
		"json": NewJSONEncoder(true),
		"yaml": NewYAMLEncoder(),
		"csv":  NewCSVEncoder(),
	}
}

// EncoderFor picks an encoder by format name or file extension ("json", ".yml", ...).
func EncoderFor(format string) (Encoder, error) {
	key := strings.ToLower(strings.TrimPrefix(format, "."))
	if key == "yml" {
		key = "yaml"
	}
	enc, ok := DefaultEncoders()[key]
	if !ok {
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
	return enc, nil
}

// --- JSON Encoder ---

// JSONEncoder writes records as a JSON array.
type JSONEncoder struct {
	Indent bool
}

// NewJSONEncoder creates a JSON encoder.
func NewJSONEncoder(indent bool) *JSONEncoder {
	return &JSONEncoder{Indent: indent}
}

func (e *JSONEncoder) Encode(w io.Writer, records []*core.Record) error {
	enc := json.NewEncoder(w)
	if e.Indent {
		enc.SetIndent("", "  ")
	}
	if records == nil {
		records = []*core.Record{}
	}
	return enc.Encode(records)
}

// --- YAML Encoder ---

// YAMLEncoder writes records as a YAML sequence.
type YAMLEncoder struct{}

// NewYAMLEncoder creates a YAML encoder.
func NewYAMLEncoder() *YAMLEncoder {
	return &YAMLEncoder{}
}

func (e *YAMLEncoder) Encode(w io.Writer, records []*core.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if records == nil {
		records = []*core.Record{}
	}
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

// --- CSV Encoder ---

// CSVEncoder writes one row per record. Columns are id, tags and the sorted
// union of property names; collections are rendered as JSON arrays.
type CSVEncoder struct{}

// NewCSVEncoder creates a CSV encoder.
func NewCSVEncoder() *CSVEncoder {
	return &CSVEncoder{}
}

func (e *CSVEncoder) Encode(w io.Writer, records []*core.Record) error {
	seen := make(map[string]bool)
	var columns []string
	for _, r := range records {
		for k := range r.Properties {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{core.IdentityName, "tags"}, columns...)); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Identity(), MarshalCSVValue(r.Tags)}
		for _, k := range columns {
			v, ok := r.Properties[k]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, MarshalCSVValue(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// --- Helpers ---

// MarshalCSVValue converts a value to a string, using JSON for sequences.
func MarshalCSVValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if t == nil {
			return ""
		}
		b, err := json.Marshal(t)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

// DecodeRecords reads a JSON array of records, restoring collection values as []string.
func DecodeRecords(r io.Reader) ([]*core.Record, error) {
	var records []*core.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	for _, rec := range records {
		normalize(rec)
	}
	return records, nil
}

// normalize turns decoded []interface{} values back into []string.
func normalize(r *core.Record) {
	if r.Properties == nil {
		r.Properties = make(core.Properties)
	}
	for k, v := range r.Properties {
		list, ok := v.([]interface{})
		if !ok {
			continue
		}
		items := make([]string, 0, len(list))
		for _, item := range list {
			items = append(items, fmt.Sprintf("%v", item))
		}
		r.Properties[k] = items
	}
}
