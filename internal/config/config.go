package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
)

type ImageProvider string

const (
	ImageProviderOpenAI ImageProvider = "openai"
	ImageProviderGemini ImageProvider = "gemini"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type UploadProvider string

const (
	UploadCloudinary UploadProvider = "cloudinary"
	UploadFreeImage  UploadProvider = "freeimage"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Admin access
	AdminJWTSecret    string   `env:"ADMIN_JWT_SECRET"`
	AdminEmails       []string `env:"ADMIN_EMAILS" envSeparator:","`
	AllowlistFilePath string   `env:"ALLOWLIST_FILE_PATH" envDefault:"data/allowlist.json"`

	// Firestore. Empty project id switches storage to local files.
	FirestoreProjectID        string `env:"FIRESTORE_PROJECT_ID"`
	FirestoreDatabase         string `env:"FIRESTORE_DATABASE" envDefault:"(default)"`
	GoogleCredentialsJSON     string `env:"GOOGLE_CREDENTIALS_JSON"`
	GoogleCredentialsJSONPath string `env:"GOOGLE_CREDENTIALS_JSON_PATH"`
	SettingsDocument          string `env:"SETTINGS_DOCUMENT" envDefault:"settings/chart"`
	GalleryCollection         string `env:"GALLERY_COLLECTION" envDefault:"gallery"`

	// Local storage
	SettingsFilePath string `env:"SETTINGS_FILE_PATH" envDefault:"data/chart_settings.json"`
	GalleryFilePath  string `env:"GALLERY_FILE_PATH" envDefault:"data/gallery.jsonl"`
	ExportLogPath    string `env:"EXPORT_LOG_PATH" envDefault:"logs/exports.jsonl"`

	// Image generation
	ImageProvider ImageProvider `env:"IMAGE_PROVIDER" envDefault:"gemini"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	OpenAIImage   string        `env:"OPENAI_IMAGE_MODEL" envDefault:"dall-e-3"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiImage   string        `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.0-flash-preview-image-generation"`
	GalleryLabel  string        `env:"EXPORT_GALLERY_CATEGORY" envDefault:"Grafik"`

	// Insight text generation
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Uploads
	UploadProvider      UploadProvider `env:"UPLOAD_PROVIDER" envDefault:"cloudinary"`
	CloudinaryCloudName string         `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string         `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string         `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string         `env:"CLOUDINARY_FOLDER" envDefault:"ukm-ponja"`
	FreeImageAPIKey     string         `env:"FREEIMAGE_API_KEY"`

	// Revalidation of public pages after a save
	RevalidateURL    string   `env:"REVALIDATE_URL"`
	RevalidateSecret string   `env:"REVALIDATE_SECRET"`
	RevalidatePaths  []string `env:"REVALIDATE_PATHS" envSeparator:"," envDefault:"/,/laporan"`

	// Telegram admin bot (optional)
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminIDs []int64 `env:"TELEGRAM_ADMIN_IDS" envSeparator:":"`
	MessageParseMode string  `env:"MESSAGE_PARSE_MODE" envDefault:"HTML"`

	// Scheduled snapshot export, standard 5-field cron. Empty disables it.
	ExportSchedule string `env:"EXPORT_SCHEDULE"`
	// Upper bound for one export run (generate, upload, record).
	ExportTimeout time.Duration `env:"EXPORT_TIMEOUT" envDefault:"3m"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.GoogleCredentialsJSON == "" && cfg.GoogleCredentialsJSONPath != "" {
		data, err := os.ReadFile(cfg.GoogleCredentialsJSONPath)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		cfg.GoogleCredentialsJSON = string(data)
	}
	return cfg, nil
}

// UsesFirestore reports whether Firestore-backed stores should be built.
func (c *Config) UsesFirestore() bool {
	return c.FirestoreProjectID != ""
}
