package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"ukm-ponja/internal/app"
	"ukm-ponja/internal/chart"
	"ukm-ponja/internal/export"
	"ukm-ponja/internal/render"
	"ukm-ponja/internal/settings"
)

type GetChartParams struct{}

type ParseChartParams struct {
	Text string `json:"text" mcp:"newline separated NAME=VALUE lines"`
}

type SaveChartParams struct {
	TargetData     string `json:"target_data,omitempty" mcp:"newline separated NAME=VALUE lines"`
	ProgramService string `json:"program_service,omitempty" mcp:"program or service name used in the chart title"`
	PersonInCharge string `json:"person_in_charge,omitempty" mcp:"person responsible for the program"`
	Period         string `json:"period,omitempty" mcp:"reporting period, e.g. 'Januari 2025'"`
}

type ExportChartParams struct{}

type chartServer struct {
	app *app.App
	log *zap.Logger
}

func newChartServer(a *app.App) *chartServer {
	return &chartServer{app: a, log: a.Log.Named("mcp")}
}

func textResult(text string, meta map[string]interface{}) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		Meta:    meta,
	}
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func describe(cfg settings.Config, parsed chart.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", chart.Title(cfg.ProgramService, cfg.Period))
	if cfg.PersonInCharge != "" {
		fmt.Fprintf(&b, "Penanggung jawab: %s\n", cfg.PersonInCharge)
	}
	fmt.Fprintf(&b, "%d records:\n", len(parsed.Records))
	for _, r := range parsed.Records {
		fmt.Fprintf(&b, "- %s = %s\n", r.Name, render.FormatValue(r.Value))
	}
	if len(parsed.Skipped) > 0 {
		fmt.Fprintf(&b, "%d skipped lines:\n", len(parsed.Skipped))
		for _, s := range parsed.Skipped {
			fmt.Fprintf(&b, "- line %d %q: %s\n", s.Line, s.Text, s.Reason)
		}
	}
	return b.String()
}

func (s *chartServer) GetChartData(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[GetChartParams]) (*mcp.CallToolResultFor[any], error) {
	cfg, fallback := s.app.Settings.Current(ctx)
	parsed := chart.ParseDetailed(cfg.TargetData)
	text := describe(cfg, parsed)
	if fallback {
		text = "No stored configuration, showing the default dataset.\n" + text
	}
	return textResult(text, map[string]interface{}{
		"fallback": fallback,
		"records":  len(parsed.Records),
		"skipped":  len(parsed.Skipped),
	}), nil
}

func (s *chartServer) ParseChartData(_ context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ParseChartParams]) (*mcp.CallToolResultFor[any], error) {
	parsed := chart.ParseDetailed(params.Arguments.Text)
	return textResult(describe(settings.Config{TargetData: params.Arguments.Text}, parsed), map[string]interface{}{
		"records": len(parsed.Records),
		"skipped": len(parsed.Skipped),
	}), nil
}

func (s *chartServer) SaveChartData(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SaveChartParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	var p settings.Patch
	set := func(dst **string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = &v
		}
	}
	set(&p.TargetData, args.TargetData)
	set(&p.ProgramService, args.ProgramService)
	set(&p.PersonInCharge, args.PersonInCharge)
	set(&p.Period, args.Period)

	parsed, err := s.app.Settings.Save(ctx, p)
	if err != nil {
		s.log.Warn("save_chart_data failed", zap.Error(err))
		return errorResult(fmt.Sprintf("❌ Save failed: %v", err)), nil
	}
	text := "✅ Chart configuration saved."
	if p.TargetData != nil {
		text += fmt.Sprintf(" %d records, %d skipped lines.", len(parsed.Records), len(parsed.Skipped))
	}
	return textResult(text, map[string]interface{}{
		"records": len(parsed.Records),
		"skipped": len(parsed.Skipped),
	}), nil
}

func (s *chartServer) ExportChart(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[ExportChartParams]) (*mcp.CallToolResultFor[any], error) {
	if s.app.Pipeline == nil {
		return errorResult("❌ Image export is not configured"), nil
	}
	ctx, cancel := export.WithTimeout(ctx, s.app.Config.ExportTimeout)
	defer cancel()
	cfg, _ := s.app.Settings.Current(ctx)
	res, err := s.app.Pipeline.Export(ctx, export.Request{Config: cfg, Trigger: "mcp"})
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Export failed: %v", err)), nil
	}
	meta := map[string]interface{}{"kind": string(res.Kind), "title": res.Title}
	if res.Kind == export.Persisted {
		meta["url"] = res.URL
		text := "✅ Exported and saved: " + res.URL
		if res.Warning != "" {
			text += "\n⚠️ " + res.Warning
		}
		return textResult(text, meta), nil
	}
	return textResult("⚠️ Image generated but not saved permanently: "+res.Warning, meta), nil
}
