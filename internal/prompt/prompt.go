// Package prompt builds the natural-language instructions sent to the
// generative services. Everything here is pure string building.
package prompt

import (
	"fmt"
	"strings"

	"ukm-ponja/internal/chart"
	"ukm-ponja/internal/settings"
)

// Palette is the colour constraint given to the image model.
var Palette = []string{"#2E7D32", "#66BB6A", "#A5D6A7", "#FFFFFF"}

// ImageRequest is the payload for one image generation call.
type ImageRequest struct {
	Title  string
	Prompt string
}

// Image builds the export instruction for a horizontal bar chart of cfg.TargetData.
// The raw target data is embedded verbatim.
func Image(cfg settings.Config) ImageRequest {
	title := chart.Title(cfg.ProgramService, cfg.Period)

	var b strings.Builder
	b.WriteString("Create a clean, professional infographic image of a HORIZONTAL BAR CHART.\n")
	fmt.Fprintf(&b, "Chart title: %q.\n", title)
	fmt.Fprintf(&b, "Use only this colour palette: %s, on a white background.\n", strings.Join(Palette, ", "))
	b.WriteString("Put every category name on the vertical axis and a numeric scale starting at 0 on the horizontal axis.\n")
	b.WriteString("Write the exact numeric value at the end of each bar. Keep the categories in the given order, first one at the top.\n")
	b.WriteString("Do not invent, drop or round any category or value.\n")
	if cfg.PersonInCharge != "" {
		fmt.Fprintf(&b, "Add a small footer: \"Penanggung jawab: %s\".\n", cfg.PersonInCharge)
	}
	b.WriteString("The data, one NAME=VALUE pair per line:\n")
	b.WriteString(cfg.TargetData)
	return ImageRequest{Title: title, Prompt: b.String()}
}

// TextRequest is a system/user prompt pair for a chat model.
type TextRequest struct {
	System string
	User   string
}

const insightSystem = `Anda adalah analis data kesehatan masyarakat untuk program UKM PONJA.
Tulis ringkasan singkat (maksimal 3 paragraf) dalam Bahasa Indonesia yang menjelaskan capaian pada grafik.
Sebutkan kategori dengan nilai tertinggi dan terendah. Jangan mengarang angka.`

// Insight asks a chat model for a short narrative of the parsed chart data.
func Insight(cfg settings.Config, ds chart.Dataset) TextRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "Judul grafik: %s\n", chart.Title(cfg.ProgramService, cfg.Period))
	if cfg.PersonInCharge != "" {
		fmt.Fprintf(&b, "Penanggung jawab: %s\n", cfg.PersonInCharge)
	}
	b.WriteString("Data:\n")
	for _, r := range ds {
		fmt.Fprintf(&b, "- %s: %g\n", r.Name, r.Value)
	}
	return TextRequest{System: insightSystem, User: b.String()}
}
