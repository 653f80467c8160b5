package models

import (
	"slices"
	"strconv"
	"strings"
)

// RecordSet holds the rows parsed from a single results page.
// Every row carries exactly len(Header) values.
type RecordSet struct {
	Page   int        `json:"page"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// NewRecordSet creates an empty RecordSet with the given header
func NewRecordSet(header []string) *RecordSet {
	return &RecordSet{
		Header: slices.Clone(header),
		Rows:   [][]string{},
	}
}

// Append adds row when its value count matches the header and reports whether it was kept
func (rs *RecordSet) Append(row []string) bool {
	if len(row) != len(rs.Header) {
		return false
	}
	rs.Rows = append(rs.Rows, row)
	return true
}

// Len returns the number of rows
func (rs *RecordSet) Len() int {
	return len(rs.Rows)
}

// Empty reports whether the set has no rows
func (rs *RecordSet) Empty() bool {
	return len(rs.Rows) == 0
}

// Aggregate is the row-major union of every page's RecordSet.
// The header is taken from the first page added.
type Aggregate struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Pages  int        `json:"pages"`
}

// Add appends all rows of rs in order. It reports false when rs carries a header
// that differs from the aggregate's; the rows are appended regardless.
func (a *Aggregate) Add(rs *RecordSet) bool {
	a.Pages++
	if a.Header == nil {
		a.Header = slices.Clone(rs.Header)
		a.Rows = append(a.Rows, rs.Rows...)
		return true
	}
	a.Rows = append(a.Rows, rs.Rows...)
	return slices.Equal(a.Header, rs.Header)
}

// Len returns the number of rows
func (a *Aggregate) Len() int {
	return len(a.Rows)
}

// Dedupe drops rows that exactly repeat an earlier row anywhere in the aggregate,
// keeping first occurrences in order. It returns the number of rows removed.
func (a *Aggregate) Dedupe() int {
	seen := make(map[string]struct{}, len(a.Rows))
	kept := a.Rows[:0]
	for _, row := range a.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	removed := len(a.Rows) - len(kept)
	a.Rows = kept
	return removed
}

// rowKey length-prefixes each value so distinct rows never collide
func rowKey(row []string) string {
	var sb strings.Builder
	for _, v := range row {
		sb.WriteString(strconv.Itoa(len(v)))
		sb.WriteByte(':')
		sb.WriteString(v)
	}
	return sb.String()
}
