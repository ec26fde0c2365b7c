package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ukm-ponja/internal/chart"
	"ukm-ponja/internal/settings"
)

func TestImage_EmbedsDataVerbatim(t *testing.T) {
	data := "Hipertensi = 150\nBadLine\nISPA = 320"
	req := Image(settings.Config{TargetData: data, ProgramService: "Pelayanan PTM", Period: "Januari 2025"})

	assert.Equal(t, "Target Pelayanan PTM Periode Januari 2025", req.Title)
	assert.True(t, strings.HasSuffix(req.Prompt, data))
	assert.Contains(t, req.Prompt, "HORIZONTAL BAR CHART")
	assert.Contains(t, req.Prompt, "#2E7D32")
	assert.Contains(t, req.Prompt, req.Title)
	assert.NotContains(t, req.Prompt, "Penanggung jawab")
}

func TestImage_GenericTitle(t *testing.T) {
	req := Image(settings.Config{TargetData: "a=1"})
	assert.Equal(t, chart.GenericTitle, req.Title)

	req = Image(settings.Config{TargetData: "a=1", Period: "2025", PersonInCharge: "Bu Rina"})
	assert.Equal(t, chart.GenericTitle+" Periode 2025", req.Title)
	assert.Contains(t, req.Prompt, "Penanggung jawab: Bu Rina")
}

func TestInsight(t *testing.T) {
	ds := chart.Parse("Hipertensi=150\nISPA=320.5")
	req := Insight(settings.Config{ProgramService: "PTM"}, ds)
	assert.Contains(t, req.System, "UKM PONJA")
	assert.Contains(t, req.User, "Judul grafik: Target PTM")
	assert.Contains(t, req.User, "- ISPA: 320.5")
}
