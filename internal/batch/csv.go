package batch

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/shpitdev/vc-enricher/pkg/profile"
)

// Header returns the stable CSV header for Row.
func Header() []string {
	return []string{
		"id",
		"name",
		"website",
		"status",
		"error",
		"error_kind",
		"summary",
		"what_they_do",
		"keywords",
		"signals",
		"source",
		"scraped_at",
		"thesis_score",
		"thesis_reasoning",
	}
}

// WriteCSV writes rows as a CSV with the stable Header() ordering. List
// columns hold JSON arrays.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range rows {
		rec, err := csvRecord(r)
		if err != nil {
			return err
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(r Row) ([]string, error) {
	rec := []string{r.ID, r.Name, r.Website, r.Status, r.Error, r.ErrorKind, "", "", "", "", "", "", "", ""}
	p := r.Profile
	if p == nil {
		return rec, nil
	}
	whatTheyDo, err := jsonArrayOrEmpty(p.WhatTheyDo)
	if err != nil {
		return nil, err
	}
	keywords, err := jsonArrayOrEmpty(p.Keywords)
	if err != nil {
		return nil, err
	}
	signals, err := jsonArrayOrEmpty(p.Signals)
	if err != nil {
		return nil, err
	}
	rec[6] = p.Summary
	rec[7] = whatTheyDo
	rec[8] = keywords
	rec[9] = signals
	rec[10] = p.Source
	if !p.ScrapedAt.IsZero() {
		rec[11] = p.ScrapedAt.UTC().Format(time.RFC3339Nano)
	}
	if p.ThesisMatch != nil {
		rec[12] = strconv.Itoa(p.ThesisMatch.Score)
		rec[13] = p.ThesisMatch.Reasoning
	}
	return rec, nil
}

func jsonArrayOrEmpty[T string | profile.Signal](vals []T) (string, error) {
	if len(vals) == 0 {
		return "", nil
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// JSONLWriter writes one JSON object per row.
type JSONLWriter struct {
	enc *json.Encoder
}

func NewJSONLWriter(w io.Writer) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{enc: enc}
}

func (w *JSONLWriter) Write(r Row) error {
	return w.enc.Encode(r)
}

// WriteJSONL writes rows as JSON lines, carrying the full profile.
func WriteJSONL(w io.Writer, rows []Row) error {
	jw := NewJSONLWriter(w)
	for _, r := range rows {
		if err := jw.Write(r); err != nil {
			return err
		}
	}
	return nil
}
