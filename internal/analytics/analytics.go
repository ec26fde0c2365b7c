package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"ukm-ponja/internal/storage"
)

// DailyStats counts chart exports for one day.
type DailyStats struct {
	Date      string         `json:"date"`
	Total     int            `json:"total"`
	Persisted int            `json:"persisted"`
	Transient int            `json:"transient"`
	Failed    int            `json:"failed"`
	ByTrigger map[string]int `json:"by_trigger"`
	Errors    []string       `json:"errors,omitempty"`
	LastURL   string         `json:"last_url,omitempty"`
}

// AnalyzeDailyExports counts events in [start of targetDate, +24h).
func AnalyzeDailyExports(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByTrigger: make(map[string]int),
	}
	var last time.Time
	for _, ev := range events {
		if ev.Timestamp.Before(startOfDay) || !ev.Timestamp.Before(endOfDay) {
			continue
		}
		stats.Total++
		trigger := ev.Trigger
		if trigger == "" {
			trigger = "unknown"
		}
		stats.ByTrigger[trigger]++
		switch ev.Outcome {
		case storage.OutcomePersisted:
			stats.Persisted++
			if !ev.Timestamp.Before(last) {
				last = ev.Timestamp
				stats.LastURL = ev.URL
			}
		case storage.OutcomeTransient:
			stats.Transient++
		default:
			stats.Failed++
			if ev.Error != "" {
				stats.Errors = append(stats.Errors, ev.Error)
			}
		}
	}
	return stats
}

// GenerateReportSummary renders the stats as a short plain-text report.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Laporan ekspor grafik %s\n\n", ds.Date)
	fmt.Fprintf(&b, "- Total ekspor: %d\n", ds.Total)
	fmt.Fprintf(&b, "- Tersimpan permanen: %d\n", ds.Persisted)
	fmt.Fprintf(&b, "- Sementara (upload gagal): %d\n", ds.Transient)
	fmt.Fprintf(&b, "- Gagal: %d\n", ds.Failed)

	if len(ds.ByTrigger) > 0 {
		triggers := make([]string, 0, len(ds.ByTrigger))
		for t := range ds.ByTrigger {
			triggers = append(triggers, t)
		}
		sort.Strings(triggers)
		b.WriteString("\nSumber:\n")
		for _, t := range triggers {
			fmt.Fprintf(&b, "- %s: %d\n", t, ds.ByTrigger[t])
		}
	}
	if len(ds.Errors) > 0 {
		b.WriteString("\nKesalahan:\n")
		for _, e := range ds.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	if ds.LastURL != "" {
		fmt.Fprintf(&b, "\nGambar terakhir: %s\n", ds.LastURL)
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
