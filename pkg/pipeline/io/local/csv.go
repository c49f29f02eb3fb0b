package local

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shpitdev/vc-enricher/pkg/profile"
)

// ReadCompaniesCSV reads a CSV file of companies. The "website" column is
// required; "id", "name", and "description" are picked up when present.
// Header matching is case-insensitive.
func ReadCompaniesCSV(r io.Reader) ([]profile.Company, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	websiteIdx, ok := cols["website"]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", "website")
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var companies []profile.Company
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if websiteIdx >= len(rec) {
			return nil, fmt.Errorf("row %d has %d columns, want at least %d", line, len(rec), websiteIdx+1)
		}
		companies = append(companies, profile.Company{
			ID:          field(rec, "id"),
			Name:        field(rec, "name"),
			Website:     field(rec, "website"),
			Description: field(rec, "description"),
		})
	}
	return companies, nil
}
