package datagov

import (
	"strconv"
	"strings"
)

// SearchResponse is the datastore_search API envelope
type SearchResponse struct {
	Result SearchResult `json:"result"`
}

// SearchResult holds one page of records
type SearchResult struct {
	Total   int      `json:"total"`
	Records []Record `json:"records"`
}

// Record is one raw row. The portal serves field values inconsistently
// as strings or numbers, so access goes through the typed helpers.
type Record map[string]any

// String returns the named field as a trimmed string
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the named field as a float64. ok is false for absent,
// empty or non-numeric values; "NA" markers come back as not ok, never
// as zero.
func (r Record) Float(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case string:
		v = strings.TrimSpace(v)
		if v == "" || v == "NA" || v == "N/A" || v == "-" {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int returns the named field as an int
func (r Record) Int(field string) (int, bool) {
	f, ok := r.Float(field)
	if !ok {
		return 0, false
	}
	return int(f), true
}
