package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ukm-ponja/internal/app"
	"ukm-ponja/internal/config"
)

func newTestServer(t *testing.T) *chartServer {
	dir := t.TempDir()
	a, err := app.New(context.Background(), &config.Config{
		SettingsFilePath: filepath.Join(dir, "chart.json"),
		GalleryFilePath:  filepath.Join(dir, "gallery.jsonl"),
		ExportLogPath:    filepath.Join(dir, "exports.jsonl"),
	}, nil)
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	return newChartServer(a)
}

func text(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestParseChartData(t *testing.T) {
	cs := newTestServer(t)
	res, err := cs.ParseChartData(context.Background(), nil, &mcp.CallToolParamsFor[ParseChartParams]{
		Arguments: ParseChartParams{Text: "Hipertensi = 150\nBadLineNoEquals\nISPA = 320"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out := text(t, res)
	if !strings.Contains(out, "2 records") || !strings.Contains(out, "- ISPA = 320") || !strings.Contains(out, `line 2 "BadLineNoEquals"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestSaveThenGetChartData(t *testing.T) {
	cs := newTestServer(t)
	ctx := context.Background()

	res, err := cs.GetChartData(ctx, nil, &mcp.CallToolParamsFor[GetChartParams]{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.HasPrefix(text(t, res), "No stored configuration") {
		t.Fatalf("expected fallback notice: %s", text(t, res))
	}

	res, err = cs.SaveChartData(ctx, nil, &mcp.CallToolParamsFor[SaveChartParams]{
		Arguments: SaveChartParams{TargetData: "a=1\nb=2", Period: "2025"},
	})
	if err != nil || res.IsError {
		t.Fatalf("save: %v %s", err, text(t, res))
	}
	if !strings.Contains(text(t, res), "2 records") {
		t.Fatalf("unexpected save output: %s", text(t, res))
	}

	res, _ = cs.SaveChartData(ctx, nil, &mcp.CallToolParamsFor[SaveChartParams]{})
	if !res.IsError {
		t.Fatalf("empty save must be reported as error")
	}

	res, _ = cs.GetChartData(ctx, nil, &mcp.CallToolParamsFor[GetChartParams]{})
	out := text(t, res)
	if strings.Contains(out, "No stored configuration") || !strings.Contains(out, "Periode 2025") || !strings.Contains(out, "- b = 2") {
		t.Fatalf("unexpected get output: %s", out)
	}
}

func TestExportChart_NotConfigured(t *testing.T) {
	cs := newTestServer(t)
	res, err := cs.ExportChart(context.Background(), nil, &mcp.CallToolParamsFor[ExportChartParams]{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error when export is not configured")
	}
}
