package telegram

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ukm-ponja/internal/export"
)

// ProgressStep is one line of the progress message.
type ProgressStep struct {
	Name      string
	Status    export.StepStatus
	StartTime time.Time
	EndTime   time.Time
}

// ProgressTracker edits a single chat message as the export moves through its steps.
type ProgressTracker struct {
	bot       *Bot
	chatID    int64
	messageID int
	steps     map[export.Step]*ProgressStep
	order     []export.Step
	mu        sync.Mutex
	footer    string
}

const statusPending export.StepStatus = "pending"

func NewProgressTracker(bot *Bot, chatID int64, messageID int) *ProgressTracker {
	return &ProgressTracker{
		bot:       bot,
		chatID:    chatID,
		messageID: messageID,
		steps: map[export.Step]*ProgressStep{
			export.StepGenerate: {Name: "🎨 Membuat gambar", Status: statusPending},
			export.StepUpload:   {Name: "☁️ Mengunggah gambar", Status: statusPending},
			export.StepRecord:   {Name: "🗂️ Mencatat ke galeri", Status: statusPending},
		},
		order: []export.Step{export.StepGenerate, export.StepUpload, export.StepRecord},
	}
}

func (pt *ProgressTracker) UpdateProgress(step export.Step, status export.StepStatus) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if s, ok := pt.steps[step]; ok {
		s.Status = status
		switch status {
		case export.StatusInProgress:
			s.StartTime = time.Now()
		case export.StatusCompleted, export.StatusFailed:
			s.EndTime = time.Now()
		}
	}
	pt.updateMessage()
}

// Finish writes the final line: the URL, the warning or the error.
func (pt *ProgressTracker) Finish(res export.Result, err error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	b := pt.bot
	switch {
	case err != nil:
		pt.footer = "❌ Ekspor gagal: " + b.escape(err.Error()) + "\nSilakan coba lagi dengan /export."
	case res.HasPersistentURL():
		pt.footer = "✅ Tersimpan: " + b.escape(res.URL)
		if res.Warning != "" {
			pt.footer += "\n⚠️ " + b.escape(res.Warning)
		}
	default:
		pt.footer = "⚠️ Gambar tidak tersimpan permanen. " + b.escape(res.Warning)
	}
	pt.updateMessage()
}

func (pt *ProgressTracker) updateMessage() {
	edit := tgbotapi.NewEditMessageText(pt.chatID, pt.messageID, pt.buildProgressMessage())
	edit.ParseMode = pt.bot.parseModeValue()
	if _, err := pt.bot.s.Send(edit); err != nil {
		pt.bot.log.Warn("failed to update progress message", zap.Error(err))
	}
}

func (pt *ProgressTracker) buildProgressMessage() string {
	var sb strings.Builder
	if pt.footer == "" {
		sb.WriteString(pt.bot.bold("🔄 Ekspor infografis...") + "\n\n")
	} else {
		sb.WriteString(pt.bot.bold("Ekspor infografis") + "\n\n")
	}
	for _, key := range pt.order {
		s := pt.steps[key]
		fmt.Fprintf(&sb, "%s %s", statusIcon(s.Status), s.Name)
		if !s.StartTime.IsZero() && !s.EndTime.IsZero() {
			fmt.Fprintf(&sb, " (%.1fs)", s.EndTime.Sub(s.StartTime).Seconds())
		}
		sb.WriteString("\n")
	}
	if pt.footer != "" {
		sb.WriteString("\n" + pt.footer)
	}
	return sb.String()
}

func statusIcon(s export.StepStatus) string {
	switch s {
	case statusPending:
		return "⏳"
	case export.StatusInProgress:
		return "🔄"
	case export.StatusCompleted:
		return "✅"
	case export.StatusFailed:
		return "❌"
	case export.StatusSkipped:
		return "⏭️"
	default:
		return "❓"
	}
}
