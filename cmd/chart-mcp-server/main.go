package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"ukm-ponja/internal/app"
	"ukm-ponja/internal/config"
	"ukm-ponja/internal/logging"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build services", zap.Error(err))
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ukm-ponja-chart-mcp",
		Version: "1.0.0",
	}, nil)
	register(server, newChartServer(a))

	logger.Info("chart MCP server ready on stdio")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		logger.Fatal("chart MCP server failed", zap.Error(err))
	}
}

func register(server *mcp.Server, cs *chartServer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_chart_data",
		Description: "Returns the stored chart configuration, its parsed records and skipped lines",
	}, cs.GetChartData)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_chart_data",
		Description: "Parses NAME=VALUE lines without saving and reports which lines would be skipped",
	}, cs.ParseChartData)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_chart_data",
		Description: "Merges the given fields into the stored chart configuration; empty fields are left unchanged",
	}, cs.SaveChartData)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_chart",
		Description: "Generates the chart infographic from the stored configuration, uploads it and records it in the gallery",
	}, cs.ExportChart)
}
