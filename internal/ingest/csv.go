package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/riskpilot-ai/riskpilot/internal/domain"
)

// Table holds one parsed CSV category: a header row plus data rows. Rows are
// kept verbatim for chunk text; typed accessors map them into validated
// records with defaulting.
type Table struct {
	Kind   domain.ChunkKind
	Header []string
	Rows   [][]string
}

// ParseCSV reads a comma-separated table with a header row. Blank lines are
// skipped and ragged rows are tolerated; a malformed row never rejects the
// whole upload.
func ParseCSV(kind domain.ChunkKind, r io.Reader) (*Table, error) {
	if !domain.IsValidChunkKind(kind) {
		return nil, domain.ErrInvalidChunkKind
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s csv: %w", kind, err)
	}

	t := &Table{Kind: kind}
	for _, record := range records {
		if isBlankRow(record) {
			continue
		}
		if t.Header == nil {
			t.Header = record
			continue
		}
		t.Rows = append(t.Rows, record)
	}

	return t, nil
}

// IsEmpty reports whether the table has no data rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// ChunkText builds the textual representation of one row, the unit that gets
// embedded and retrieved.
func (t *Table) ChunkText(row []string) string {
	return fmt.Sprintf("Context: %s\nData: %s\nValues: %s",
		t.Kind, strings.Join(t.Header, ","), strings.Join(row, ","))
}

// Text renders the whole table for the analyst prompts.
func (t *Table) Text() string {
	if t.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, ","))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, ","))
	}
	return b.String()
}

// People maps employee rows into typed records. Missing columns default.
func (t *Table) People() []domain.Person {
	people := make([]domain.Person, 0, len(t.Rows))
	for _, row := range t.Rows {
		get := t.fieldGetter(row)
		people = append(people, domain.Person{
			Name:        get("name"),
			Role:        get("role"),
			Department:  get("department"),
			Attendance:  parseFloatOrZero(get("attendance")),
			Performance: parseFloatOrZero(get("performance")),
		})
	}
	return people
}

// Schedule maps schedule rows into typed records.
func (t *Table) Schedule() []domain.ScheduleItem {
	items := make([]domain.ScheduleItem, 0, len(t.Rows))
	for _, row := range t.Rows {
		get := t.fieldGetter(row)
		items = append(items, domain.ScheduleItem{
			Task:     get("task", "name"),
			Owner:    get("owner"),
			DueDate:  get("due_date", "due", "deadline"),
			Status:   get("status"),
			Progress: parseFloatOrZero(get("progress")),
		})
	}
	return items
}

// Spend maps financial rows into typed records. Unparseable amounts stay nil
// so aggregation can skip them.
func (t *Table) Spend() []domain.SpendItem {
	items := make([]domain.SpendItem, 0, len(t.Rows))
	for _, row := range t.Rows {
		get := t.fieldGetter(row)
		items = append(items, domain.SpendItem{
			Date:        get("date"),
			Category:    get("category"),
			Description: get("description"),
			Amount:      ParseAmount(get("amount", "amt")),
		})
	}
	return items
}

// TotalSpend sums every parseable amount in a financial table.
func (t *Table) TotalSpend() float64 {
	var total float64
	for _, item := range t.Spend() {
		if item.Amount != nil {
			total += *item.Amount
		}
	}
	return total
}

// fieldGetter resolves a row value by header name, case-insensitively, with
// fallback aliases. Out-of-range and unknown columns yield "".
func (t *Table) fieldGetter(row []string) func(names ...string) string {
	return func(names ...string) string {
		for _, name := range names {
			for i, col := range t.Header {
				if i >= len(row) {
					break
				}
				if strings.EqualFold(strings.TrimSpace(col), name) {
					return strings.TrimSpace(row[i])
				}
			}
		}
		return ""
	}
}

// ParseAmount extracts a numeric amount from a raw CSV value, tolerating
// currency symbols and thousands separators. Returns nil when nothing
// numeric remains.
func ParseAmount(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ':
			return -1
		}
		return r
	}, cleaned)

	if cleaned == "" {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

// parseFloatOrZero parses a numeric field, defaulting to zero when the value
// is missing or unparseable.
func parseFloatOrZero(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return value
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
