package telegram

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ukm-ponja/internal/analytics"
	"ukm-ponja/internal/chart"
	"ukm-ponja/internal/export"
	"ukm-ponja/internal/render"
	"ukm-ponja/internal/settings"
)

const helpText = `Perintah:
/chart - grafik saat ini
/data - data grafik dan baris yang dilewati
/set - ganti data grafik (baris NAMA=NILAI setelah perintah)
/export - buat infografis dan simpan ke galeri
/report - laporan ekspor hari ini`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendMessage(msg.Chat.ID, helpText)
	case "chart":
		b.handleChartCommand(ctx, msg)
	case "data":
		b.handleDataCommand(ctx, msg)
	case "set":
		b.handleSetCommand(ctx, msg)
	case "export":
		b.handleExportCommand(ctx, msg)
	case "report":
		if err := b.SendDailyReport(ctx, msg.Chat.ID); err != nil {
			b.log.Error("report generation failed", zap.Error(err))
			b.sendMessage(msg.Chat.ID, "❌ Gagal membuat laporan: "+b.escape(err.Error()))
		}
	default:
		b.sendMessage(msg.Chat.ID, "Perintah tidak dikenal.\n\n"+helpText)
	}
}

func (b *Bot) handleChartCommand(ctx context.Context, msg *tgbotapi.Message) {
	cfg, fallback := b.settings.Current(ctx)
	title := chart.Title(cfg.ProgramService, cfg.Period)
	var buf bytes.Buffer
	if err := b.renderer.Render(&buf, render.NewLayout(title, chart.Parse(cfg.TargetData)), render.FormatPNG); err != nil {
		b.log.Error("chart render failed", zap.Error(err))
		b.sendMessage(msg.Chat.ID, "❌ Gagal menggambar grafik")
		return
	}
	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "chart.png", Bytes: buf.Bytes()})
	photo.Caption = title
	if fallback {
		photo.Caption += "\n(data contoh, belum ada data tersimpan)"
	}
	if _, err := b.s.Send(photo); err != nil {
		b.log.Warn("failed to send chart", zap.Error(err))
	}
}

func (b *Bot) handleDataCommand(ctx context.Context, msg *tgbotapi.Message) {
	cfg, fallback := b.settings.Current(ctx)
	parsed := chart.ParseDetailed(cfg.TargetData)

	var sb strings.Builder
	sb.WriteString(b.bold(chart.Title(cfg.ProgramService, cfg.Period)) + "\n")
	if cfg.PersonInCharge != "" {
		sb.WriteString("Penanggung jawab: " + b.escape(cfg.PersonInCharge) + "\n")
	}
	if fallback {
		sb.WriteString("⚠️ Belum ada data tersimpan, menampilkan data contoh.\n")
	}
	sb.WriteString("\n")
	for _, r := range parsed.Records {
		fmt.Fprintf(&sb, "• %s = %s\n", b.escape(r.Name), render.FormatValue(r.Value))
	}
	sb.WriteString(b.skippedText(parsed.Skipped))
	b.sendMessage(msg.Chat.ID, sb.String())
}

func (b *Bot) handleSetCommand(ctx context.Context, msg *tgbotapi.Message) {
	data := strings.TrimSpace(msg.CommandArguments())
	if data == "" {
		b.sendMessage(msg.Chat.ID, "Kirim /set diikuti baris NAMA=NILAI, contoh:\n/set\nHipertensi = 150\nISPA = 320")
		return
	}
	parsed, err := b.settings.Save(ctx, settings.Patch{TargetData: &data})
	if err != nil {
		b.log.Error("save from telegram failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.sendMessage(msg.Chat.ID, "❌ Gagal menyimpan: "+b.escape(err.Error()))
		return
	}
	text := fmt.Sprintf("✅ Data grafik disimpan: %d baris.", len(parsed.Records))
	b.sendMessage(msg.Chat.ID, text+b.skippedText(parsed.Skipped))
}

func (b *Bot) skippedText(skipped []chart.SkippedLine) string {
	if len(skipped) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n⚠️ %d baris dilewati:\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(&sb, "- baris %d: %s (%s)\n", s.Line, b.escape(s.Text), s.Reason)
	}
	return sb.String()
}

func (b *Bot) handleExportCommand(ctx context.Context, msg *tgbotapi.Message) {
	if b.exporter == nil {
		b.sendMessage(msg.Chat.ID, "❌ Ekspor gambar belum dikonfigurasi.")
		return
	}
	initial := tgbotapi.NewMessage(msg.Chat.ID, "🔄 Membuat infografis...")
	sent, err := b.s.Send(initial)
	if err != nil {
		b.log.Warn("failed to send initial progress message", zap.Error(err))
		return
	}
	tracker := NewProgressTracker(b, msg.Chat.ID, sent.MessageID)
	cfg, _ := b.settings.Current(ctx)
	actor := fmt.Sprintf("tg:%d", msg.From.ID)

	b.spawn(func() {
		ctx, cancel := export.WithTimeout(context.WithoutCancel(ctx), b.exportTimeout)
		defer cancel()
		res, err := b.exporter.Export(ctx, export.Request{
			Config: cfg, Trigger: "telegram", Actor: actor, Progress: tracker,
		})
		tracker.Finish(res, err)
		if err == nil {
			b.sendExportImage(msg.Chat.ID, res)
		}
	})
}

// sendExportImage posts the durable URL when there is one, the raw bytes otherwise.
func (b *Bot) sendExportImage(chatID int64, res export.Result) {
	var file tgbotapi.RequestFileData
	if res.HasPersistentURL() {
		file = tgbotapi.FileURL(res.URL)
	} else {
		data, err := decodeDataURI(res.ImageData)
		if err != nil {
			b.log.Warn("cannot decode exported image", zap.Error(err))
			return
		}
		file = tgbotapi.FileBytes{Name: "infografis.png", Bytes: data}
	}
	photo := tgbotapi.NewPhoto(chatID, file)
	photo.Caption = res.Title
	if _, err := b.s.Send(photo); err != nil {
		b.log.Warn("failed to send exported image", zap.Error(err))
	}
}

func decodeDataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("not a data uri")
	}
	return base64.StdEncoding.DecodeString(payload)
}

// SendDailyReport posts today's export statistics to chatID.
func (b *Bot) SendDailyReport(_ context.Context, chatID int64) error {
	stats, err := b.dailyStats()
	if err != nil {
		return err
	}
	b.sendMessage(chatID, "📊 "+b.escape(stats.GenerateReportSummary()))
	return nil
}

// ReportToAdmins is the scheduler job for the daily report.
func (b *Bot) ReportToAdmins(context.Context) error {
	stats, err := b.dailyStats()
	if err != nil {
		return err
	}
	b.NotifyAdmins("📊 " + b.escape(stats.GenerateReportSummary()))
	return nil
}

func (b *Bot) dailyStats() (*analytics.DailyStats, error) {
	if b.recorder == nil {
		return nil, fmt.Errorf("export log is not configured")
	}
	events, err := b.recorder.LoadExports()
	if err != nil {
		return nil, fmt.Errorf("load export log: %w", err)
	}
	return analytics.AnalyzeDailyExports(events, b.now().UTC()), nil
}

// NotifyExport tells the admins how a scheduled export ended.
func (b *Bot) NotifyExport(res export.Result, err error) {
	switch {
	case err != nil:
		b.NotifyAdmins("❌ Ekspor terjadwal gagal: " + b.escape(err.Error()))
	case res.Kind == export.Transient:
		b.NotifyAdmins("⚠️ Ekspor terjadwal selesai tanpa tautan permanen: " + b.escape(res.Warning))
	default:
		text := "✅ Ekspor terjadwal tersimpan: " + b.escape(res.URL)
		if res.Warning != "" {
			text += "\n⚠️ " + b.escape(res.Warning)
		}
		b.NotifyAdmins(text)
	}
}
