package chart

import (
	"math"
	"strconv"
	"strings"
)

// Record is one parsed NAME=VALUE data point.
type Record struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Dataset is the ordered parser output. Every Parse call returns a new slice.
type Dataset []Record

// SkipReason says why a line did not become a Record.
type SkipReason string

const (
	SkipNoSeparator SkipReason = "missing '='"
	SkipEmptyName   SkipReason = "empty name"
	SkipEmptyValue  SkipReason = "empty value"
	SkipBadNumber   SkipReason = "value is not a number"
)

// SkippedLine describes a dropped input line. Line is 1-based.
type SkippedLine struct {
	Line   int        `json:"line"`
	Text   string     `json:"text"`
	Reason SkipReason `json:"reason"`
}

// Result is the parser output together with the lines it dropped.
type Result struct {
	Records Dataset       `json:"records"`
	Skipped []SkippedLine `json:"skipped,omitempty"`
}

// Parse converts newline-delimited NAME=VALUE text into records.
// Malformed lines are dropped silently; use ParseDetailed to see them.
func Parse(text string) Dataset {
	return ParseDetailed(text).Records
}

// ParseDetailed works like Parse and also reports every non-blank line it dropped.
func ParseDetailed(text string) Result {
	res := Result{Records: Dataset{}}
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		rec, reason, ok := parseLine(line)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedLine{Line: i + 1, Text: line, Reason: reason})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// parseLine splits on the first '=' only; anything after it belongs to the value.
func parseLine(line string) (Record, SkipReason, bool) {
	name, value, found := strings.Cut(line, "=")
	if !found {
		return Record{}, SkipNoSeparator, false
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" {
		return Record{}, SkipEmptyName, false
	}
	if value == "" {
		return Record{}, SkipEmptyValue, false
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Record{}, SkipBadNumber, false
	}
	return Record{Name: name, Value: v}, "", true
}

// Max returns the largest value, or 0 for an empty dataset.
func (d Dataset) Max() float64 {
	if len(d) == 0 {
		return 0
	}
	m := d[0].Value
	for _, r := range d[1:] {
		if r.Value > m {
			m = r.Value
		}
	}
	return m
}

// Min returns the smallest value, or 0 for an empty dataset.
func (d Dataset) Min() float64 {
	if len(d) == 0 {
		return 0
	}
	m := d[0].Value
	for _, r := range d[1:] {
		if r.Value < m {
			m = r.Value
		}
	}
	return m
}
