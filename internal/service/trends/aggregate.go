package trends

import (
	"encoding/json"
	"sort"

	"github.com/curebird/backend/internal/core"
)

// apiResponse is the data.gov.in envelope; only records matter.
type apiResponse struct {
	Records []record `json:"records"`
}

// record is one raw surveillance row. The API serves numbers as strings
// more often than not, so everything numeric goes through json.Number.
type record struct {
	Disease   string      `json:"disease_disease_condition"`
	Outbreaks json.Number `json:"nos_of_outbreaks"`
	Year      string      `json:"year"`
}

// aggregate groups raw rows by disease, sums outbreak counts, keeps the
// most recent year seen, and sorts by total outbreaks descending. Rows
// with an empty disease name or an unparseable count are skipped.
func aggregate(records []record) []core.DiseaseTrend {
	type bucket struct {
		total int64
		year  string
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, r := range records {
		if r.Disease == "" {
			continue
		}
		n, err := r.Outbreaks.Int64()
		if err != nil {
			if f, ferr := r.Outbreaks.Float64(); ferr == nil {
				n = int64(f)
			} else {
				continue
			}
		}

		b, ok := buckets[r.Disease]
		if !ok {
			b = &bucket{}
			buckets[r.Disease] = b
			order = append(order, r.Disease)
		}
		b.total += n
		if r.Year > b.year {
			b.year = r.Year
		}
	}

	out := make([]core.DiseaseTrend, 0, len(order))
	for _, name := range order {
		b := buckets[name]
		out = append(out, core.DiseaseTrend{
			Disease:   name,
			Outbreaks: b.total,
			Year:      b.year,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Outbreaks > out[j].Outbreaks
	})
	return out
}
