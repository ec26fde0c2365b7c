// Package export turns the stored chart configuration into a generated
// infographic, uploads it and records it in the gallery.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ukm-ponja/internal/chart"
	"ukm-ponja/internal/gallery"
	"ukm-ponja/internal/imagegen"
	"ukm-ponja/internal/metrics"
	"ukm-ponja/internal/prompt"
	"ukm-ponja/internal/settings"
	"ukm-ponja/internal/storage"
	"ukm-ponja/internal/upload"
)

// DefaultCategory is the gallery category used for exported charts.
const DefaultCategory = "Grafik"

// DefaultTimeout bounds a whole export run when the caller sets no other limit.
const DefaultTimeout = 3 * time.Minute

// WithTimeout derives the context a caller runs one export under. A
// non-positive d means DefaultTimeout. The pipeline itself never retries
// or sets deadlines.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// Kind tells whether the exported image has a durable URL.
type Kind string

const (
	Persisted Kind = "persisted"
	Transient Kind = "transient"
)

// State of one export run. Succeeded and Failed are terminal.
type State string

const (
	Idle       State = "idle"
	Generating State = "generating"
	Succeeded  State = "succeeded"
	Failed     State = "failed"
)

// Step names the three network calls of an export.
type Step string

const (
	StepGenerate Step = "generate"
	StepUpload   Step = "upload"
	StepRecord   Step = "record"
)

// StepStatus is reported to a Progress observer.
type StepStatus string

const (
	StatusInProgress StepStatus = "in_progress"
	StatusCompleted  StepStatus = "completed"
	StatusFailed     StepStatus = "error"
	StatusSkipped    StepStatus = "skipped"
)

// Progress receives step updates, e.g. to edit a chat message.
type Progress interface {
	UpdateProgress(step Step, status StepStatus)
}

// Result is the outcome of a finished export. ImageData is always set on
// success; URL only when Kind is Persisted.
type Result struct {
	Kind      Kind            `json:"kind"`
	State     State           `json:"state"`
	Title     string          `json:"title"`
	ImageData string          `json:"imageData"`
	URL       string          `json:"url,omitempty"`
	Warning   string          `json:"warning,omitempty"`
	Source    settings.Config `json:"source"`
}

// HasPersistentURL reports which of the two success states was reached.
func (r Result) HasPersistentURL() bool { return r.Kind == Persisted && r.URL != "" }

// Request carries one export and who asked for it.
type Request struct {
	Config   settings.Config
	Trigger  string
	Actor    string
	Progress Progress
}

type Pipeline struct {
	gen      imagegen.Generator
	uploader upload.Uploader
	gallery  gallery.Store
	recorder storage.Recorder
	category string
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Pipeline)

func WithCategory(c string) Option {
	return func(p *Pipeline) {
		if c != "" {
			p.category = c
		}
	}
}

func WithRecorder(r storage.Recorder) Option { return func(p *Pipeline) { p.recorder = r } }
func WithLogger(l *zap.Logger) Option        { return func(p *Pipeline) { p.log = l } }
func WithMetrics(m *metrics.Metrics) Option  { return func(p *Pipeline) { p.metrics = m } }

func NewPipeline(gen imagegen.Generator, up upload.Uploader, store gallery.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:      gen,
		uploader: up,
		gallery:  store,
		category: DefaultCategory,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.uploader == nil {
		p.uploader = upload.Disabled{}
	}
	return p
}

// Export runs generate, upload and record in sequence. Only a generation
// failure is returned as an error; later failures degrade the result.
func (p *Pipeline) Export(ctx context.Context, req Request) (Result, error) {
	cfg := req.Config
	img := prompt.Image(cfg)
	res := Result{State: Idle, Title: img.Title, Source: cfg}
	step := func(s Step, st StepStatus) {
		if req.Progress != nil {
			req.Progress.UpdateProgress(s, st)
		}
	}

	res.State = Generating
	step(StepGenerate, StatusInProgress)
	generated, err := p.gen.GenerateImage(ctx, img.Prompt)
	if err == nil && len(generated.Data) == 0 {
		err = imagegen.ErrNoImageData
	}
	if err != nil {
		step(StepGenerate, StatusFailed)
		step(StepUpload, StatusSkipped)
		step(StepRecord, StatusSkipped)
		res.State = Failed
		p.finish(req, res, err)
		return res, fmt.Errorf("generate chart image: %w", err)
	}
	step(StepGenerate, StatusCompleted)
	res.ImageData = generated.DataURI()
	res.State = Succeeded

	step(StepUpload, StatusInProgress)
	url, err := p.uploader.Upload(ctx, img.Title, res.ImageData)
	if err == nil && url == "" {
		err = errors.New("upload returned no url")
	}
	if err != nil {
		step(StepUpload, StatusFailed)
		step(StepRecord, StatusSkipped)
		p.log.Warn("chart image upload failed, returning transient image", zap.Error(err))
		res.Kind = Transient
		res.Warning = "Gambar tidak tersimpan permanen: " + err.Error()
		p.finish(req, res, nil)
		return res, nil
	}
	step(StepUpload, StatusCompleted)
	res.Kind = Persisted
	res.URL = url

	step(StepRecord, StatusInProgress)
	if err := p.record(ctx, img.Title, url); err != nil {
		step(StepRecord, StatusFailed)
		p.log.Warn("gallery record failed", zap.String("url", url), zap.Error(err))
		res.Warning = "Gambar tersimpan tetapi belum tercatat di galeri: " + err.Error()
	} else {
		step(StepRecord, StatusCompleted)
	}
	p.finish(req, res, nil)
	return res, nil
}

func (p *Pipeline) record(ctx context.Context, name, url string) error {
	if p.gallery == nil {
		return errors.New("gallery is not configured")
	}
	_, err := p.gallery.Add(ctx, gallery.Record{Name: name, URL: url, Category: p.category})
	return err
}

func (p *Pipeline) finish(req Request, res Result, genErr error) {
	outcome := storage.OutcomeFailed
	switch {
	case genErr != nil:
	case res.Kind == Persisted:
		outcome = storage.OutcomePersisted
	default:
		outcome = storage.OutcomeTransient
	}
	p.metrics.ObserveExport(string(outcome))
	p.log.Info("chart export finished",
		zap.String("outcome", string(outcome)),
		zap.String("trigger", req.Trigger),
		zap.String("title", res.Title))

	if p.recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp: p.now().UTC(),
		Trigger:   req.Trigger,
		Actor:     req.Actor,
		Outcome:   outcome,
		Title:     res.Title,
		Records:   len(chart.Parse(req.Config.TargetData)),
		URL:       res.URL,
		Warning:   res.Warning,
	}
	if genErr != nil {
		ev.Error = genErr.Error()
	}
	if err := p.recorder.AppendExport(ev); err != nil {
		p.log.Warn("export log append failed", zap.Error(err))
	}
}
