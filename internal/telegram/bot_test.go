package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ukm-ponja/internal/auth"
	"ukm-ponja/internal/export"
	"ukm-ponja/internal/settings"
	"ukm-ponja/internal/storage"
)

type fakeSender struct {
	sent   []string
	edits  []string
	photos []tgbotapi.PhotoConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, m.Text)
	case tgbotapi.EditMessageTextConfig:
		f.edits = append(f.edits, m.Text)
	case tgbotapi.PhotoConfig:
		f.photos = append(f.photos, m)
	}
	return tgbotapi.Message{MessageID: 7}, nil
}

type fakeExporter struct {
	res export.Result
	err error
	got export.Request
}

func (f *fakeExporter) Export(_ context.Context, req export.Request) (export.Result, error) {
	f.got = req
	if req.Progress != nil {
		req.Progress.UpdateProgress(export.StepGenerate, export.StatusInProgress)
		req.Progress.UpdateProgress(export.StepGenerate, export.StatusCompleted)
	}
	return f.res, f.err
}

func newTestBot(t *testing.T, exp Exporter) (*Bot, *fakeSender, *settings.FileStore, *storage.FileRecorder) {
	t.Helper()
	dir := t.TempDir()
	store, err := settings.NewFileStore(filepath.Join(dir, "chart.json"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	rec, err := storage.NewFileRecorder(filepath.Join(dir, "exports.jsonl"))
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	authSvc, _ := auth.NewWithRepo(nil, []string{auth.TelegramID(55)})
	fs := &fakeSender{}
	b := newBot(fs, Deps{
		Auth:      authSvc,
		Settings:  settings.NewService(store, nil, nil, nil, nil),
		Exporter:  exp,
		Recorder:  rec,
		AdminIDs:  []int64{42},
		ParseMode: "HTML",
	})
	b.spawn = func(f func()) { f() }
	return b, fs, store, rec
}

func command(userID int64, text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: 100},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestUnauthorizedUser(t *testing.T) {
	b, fs, _, _ := newTestBot(t, nil)
	b.handleIncomingMessage(context.Background(), command(99, "/data"))
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "tg:99") {
		t.Fatalf("expected access denied with id, got %+v", fs.sent)
	}
}

func TestAllowlistedTelegramUser(t *testing.T) {
	b, fs, _, _ := newTestBot(t, nil)
	b.handleIncomingMessage(context.Background(), command(55, "/help"))
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "/export") {
		t.Fatalf("expected help, got %+v", fs.sent)
	}
}

func TestSetAndDataCommands(t *testing.T) {
	b, fs, store, _ := newTestBot(t, nil)
	b.handleIncomingMessage(context.Background(), command(42, "/set\nHipertensi = 150\nBadLineNoEquals\nISPA = 320"))
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "2 baris") || !strings.Contains(fs.sent[0], "baris 2: BadLineNoEquals") {
		t.Fatalf("unexpected reply: %+v", fs.sent)
	}
	cfg, err := store.Load(context.Background())
	if err != nil || cfg == nil || !strings.HasPrefix(cfg.TargetData, "Hipertensi") {
		t.Fatalf("data not saved: %v %+v", err, cfg)
	}

	b.handleIncomingMessage(context.Background(), command(42, "/data"))
	out := fs.sent[1]
	if !strings.Contains(out, "• Hipertensi = 150") || !strings.Contains(out, "• ISPA = 320") {
		t.Fatalf("data listing wrong: %q", out)
	}
	if strings.Contains(out, "data contoh") {
		t.Fatalf("stored data must not be reported as fallback: %q", out)
	}
}

func TestDataCommand_EscapesHTML(t *testing.T) {
	b, fs, store, _ := newTestBot(t, nil)
	if err := store.Save(context.Background(), settings.Full(settings.Config{TargetData: "<b>x</b>=1"})); err != nil {
		t.Fatal(err)
	}
	b.handleIncomingMessage(context.Background(), command(42, "/data"))
	if !strings.Contains(fs.sent[0], "&lt;b&gt;x&lt;/b&gt; = 1") {
		t.Fatalf("name not escaped: %q", fs.sent[0])
	}
}

func TestChartCommand_SendsPNG(t *testing.T) {
	b, fs, _, _ := newTestBot(t, nil)
	b.handleIncomingMessage(context.Background(), command(42, "/chart"))
	if len(fs.photos) != 1 {
		t.Fatalf("expected a photo, got %+v", fs.sent)
	}
	fb, ok := fs.photos[0].File.(tgbotapi.FileBytes)
	if !ok || !strings.HasPrefix(string(fb.Bytes), "\x89PNG") {
		t.Fatalf("expected png bytes")
	}
	if !strings.Contains(fs.photos[0].Caption, "data contoh") {
		t.Fatalf("fallback not mentioned: %q", fs.photos[0].Caption)
	}
}

func TestExportCommand_Transient(t *testing.T) {
	exp := &fakeExporter{res: export.Result{
		Kind: export.Transient, State: export.Succeeded, Title: "T",
		ImageData: "data:image/png;base64,iVBORw0KGgo=", Warning: "upload gagal",
	}}
	b, fs, _, _ := newTestBot(t, exp)
	b.handleIncomingMessage(context.Background(), command(42, "/export"))

	if exp.got.Trigger != "telegram" || exp.got.Actor != "tg:42" {
		t.Fatalf("unexpected request: %+v", exp.got)
	}
	if len(fs.edits) < 3 {
		t.Fatalf("expected progress edits, got %d", len(fs.edits))
	}
	last := fs.edits[len(fs.edits)-1]
	if !strings.Contains(last, "tidak tersimpan permanen") || !strings.Contains(last, "✅ 🎨 Membuat gambar") {
		t.Fatalf("unexpected final progress: %q", last)
	}
	if len(fs.photos) != 1 {
		t.Fatalf("transient image must still be sent")
	}
	if _, ok := fs.photos[0].File.(tgbotapi.FileBytes); !ok {
		t.Fatalf("transient image must be sent as bytes")
	}
}

func TestExportCommand_Failure(t *testing.T) {
	exp := &fakeExporter{err: errors.New("image generation returned no data")}
	b, fs, _, _ := newTestBot(t, exp)
	b.handleIncomingMessage(context.Background(), command(42, "/export"))
	last := fs.edits[len(fs.edits)-1]
	if !strings.Contains(last, "Ekspor gagal: image generation returned no data") {
		t.Fatalf("error not shown: %q", last)
	}
	if len(fs.photos) != 0 {
		t.Fatalf("no image expected on failure")
	}
}

type hangingExporter struct{}

func (hangingExporter) Export(ctx context.Context, _ export.Request) (export.Result, error) {
	<-ctx.Done()
	return export.Result{State: export.Failed}, ctx.Err()
}

func TestExportCommand_TimesOut(t *testing.T) {
	b, fs, _, _ := newTestBot(t, hangingExporter{})
	b.exportTimeout = 20 * time.Millisecond

	done := make(chan struct{})
	go func() {
		b.handleIncomingMessage(context.Background(), command(42, "/export"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("export did not end at its deadline")
	}
	last := fs.edits[len(fs.edits)-1]
	if !strings.Contains(last, "Ekspor gagal") || !strings.Contains(last, "deadline exceeded") {
		t.Fatalf("timeout not shown: %q", last)
	}
}

func TestExportCommand_PersistedSendsURL(t *testing.T) {
	exp := &fakeExporter{res: export.Result{Kind: export.Persisted, URL: "https://cdn/x.png", ImageData: "data:image/png;base64,AA=="}}
	b, fs, _, _ := newTestBot(t, exp)
	b.handleIncomingMessage(context.Background(), command(42, "/export"))
	if len(fs.photos) != 1 {
		t.Fatalf("expected photo")
	}
	if u, ok := fs.photos[0].File.(tgbotapi.FileURL); !ok || string(u) != "https://cdn/x.png" {
		t.Fatalf("expected url photo, got %#v", fs.photos[0].File)
	}
}

func TestReportToAdmins(t *testing.T) {
	b, fs, _, rec := newTestBot(t, nil)
	now := time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	_ = rec.AppendExport(storage.Event{Timestamp: now.Add(-time.Hour), Trigger: "admin", Outcome: storage.OutcomePersisted, URL: "https://cdn/1.png"})
	_ = rec.AppendExport(storage.Event{Timestamp: now.Add(-48 * time.Hour), Trigger: "admin", Outcome: storage.OutcomeFailed})

	if err := b.ReportToAdmins(context.Background()); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "Total ekspor: 1") {
		t.Fatalf("unexpected report: %+v", fs.sent)
	}
}

func TestNotifyExport(t *testing.T) {
	b, fs, _, _ := newTestBot(t, nil)
	b.NotifyExport(export.Result{}, errors.New("boom"))
	b.NotifyExport(export.Result{Kind: export.Transient, Warning: "w"}, nil)
	b.NotifyExport(export.Result{Kind: export.Persisted, URL: "https://cdn/a.png"}, nil)
	if len(fs.sent) != 3 || !strings.Contains(fs.sent[0], "boom") || !strings.Contains(fs.sent[1], "tanpa tautan") || !strings.Contains(fs.sent[2], "https://cdn/a.png") {
		t.Fatalf("unexpected notifications: %+v", fs.sent)
	}
}

func TestSendMessage_PlainParseMode(t *testing.T) {
	b, fs, _, _ := newTestBot(t, nil)
	b.parseMode = ""
	b.sendMessage(1, b.bold("<x>"))
	if fs.sent[0] != "<x>" {
		t.Fatalf("plain mode must not escape or decorate: %q", fs.sent[0])
	}
}

func TestDecodeDataURI(t *testing.T) {
	if _, err := decodeDataURI("https://x"); err == nil {
		t.Fatalf("expected error")
	}
	b, err := decodeDataURI("data:image/png;base64,AAE=")
	if err != nil || len(b) != 2 {
		t.Fatalf("decode: %v %v", b, err)
	}
}
