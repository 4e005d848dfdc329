package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Server     Server        `yaml:"server"`
	SessionTTL time.Duration `yaml:"session_ttl" validate:"required"`
	Uploads    Uploads       `yaml:"uploads"`
	Model      Model         `yaml:"model"`
	Chat       Chat          `yaml:"chat"`
	Log        Log           `yaml:"log"`
	RateLimits RateLimits    `yaml:"rate_limits"`
}

type Server struct {
	ApiAddr        string        `yaml:"api_addr" validate:"required"`
	WebAddr        string        `yaml:"web_addr" validate:"required"`
	ApiBaseURL     string        `yaml:"api_base_url" validate:"required,url"` // where the web frontend proxies /api to
	SecureCookies  bool          `yaml:"secure_cookies"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type Uploads struct {
	MaxFileSizeBytes  int64    `yaml:"max_file_size_bytes" validate:"required,gt=0"`
	MaxTotalSizeBytes int64    `yaml:"max_total_size_bytes" validate:"required,gtefield=MaxFileSizeBytes"`
	ImageMimeTypes    []string `yaml:"image_mime_types" validate:"required,min=1"`
	TextMimeTypes     []string `yaml:"text_mime_types" validate:"required,min=1"`
	PDFMimeTypes      []string `yaml:"pdf_mime_types" validate:"required,min=1"`
	DOCXMimeTypes     []string `yaml:"docx_mime_types" validate:"required,min=1"`
	PDFCharLimit      int      `yaml:"pdf_char_limit" validate:"required,gt=0"`
	ExtractWorkers    int      `yaml:"extract_workers" validate:"gte=0"` // 0 means one worker per CPU
}

type Model struct {
	Provider string        `yaml:"provider" validate:"required,oneof=gemini openai mock"`
	Name     string        `yaml:"name" validate:"required"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"` // time to first byte, the stream itself is bounded by the request context
}

type Chat struct {
	IncludeHistory bool   `yaml:"include_history"`
	DefaultPrompt  string `yaml:"default_prompt"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type RateLimits struct {
	LoginPerMinute float64 `yaml:"login_per_minute"`
	ChatPerMinute  float64 `yaml:"chat_per_minute"`
}

type Private struct {
	JwtKey       string `yaml:"jwt_key" validate:"required"`
	Login        Login  `yaml:"login"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	GoogleAPIKey string `yaml:"google_api_key"`
}

// Login is the single credential pair allowed to sign in.
type Login struct {
	Email        string `yaml:"email" validate:"required,email"`
	PasswordHash string `yaml:"password_hash" validate:"required"` // bcrypt
}

const (
	DefaultPrompt         = "Analyze the attached content/images and be concise."
	DocxMimeType          = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	defaultSessionTTL     = 7 * 24 * time.Hour
	defaultLoginPerMinute = 10
	defaultChatPerMinute  = 20
)

// DefaultUploads returns the upload rules used when nothing else is configured.
// The terminal client relies on it since it has no config folder.
func DefaultUploads() Uploads {
	return Uploads{
		MaxFileSizeBytes:  5 * 1024 * 1024,
		MaxTotalSizeBytes: 15 * 1024 * 1024,
		ImageMimeTypes:    []string{"image/png", "image/jpeg", "image/webp", "image/gif", "image/svg+xml"},
		TextMimeTypes:     []string{"text/plain", "text/markdown", "text/csv", "application/json"},
		PDFMimeTypes:      []string{"application/pdf"},
		DOCXMimeTypes:     []string{DocxMimeType},
		PDFCharLimit:      20000,
	}
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.SessionTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// applyEnv lets secrets come from the environment instead of private.yaml.
func applyEnv(private *Private) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		private.JwtKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		private.OpenAIAPIKey = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		private.GoogleAPIKey = v
	}
	if v := os.Getenv("PARLEY_PASSWORD_HASH"); v != "" {
		private.Login.PasswordHash = v
	}
	if v := os.Getenv("PARLEY_LOGIN_EMAIL"); v != "" {
		private.Login.Email = v
	}
}

func applyDefaults(public *Public) {
	if public.SessionTTL == 0 {
		public.SessionTTL = defaultSessionTTL
	}
	if public.Chat.DefaultPrompt == "" {
		public.Chat.DefaultPrompt = DefaultPrompt
	}
	if public.RateLimits.LoginPerMinute == 0 {
		public.RateLimits.LoginPerMinute = defaultLoginPerMinute
	}
	if public.RateLimits.ChatPerMinute == 0 {
		public.RateLimits.ChatPerMinute = defaultChatPerMinute
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	applyDefaults(&public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	applyEnv(&private)

	cfg := &Config{public, private}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
	return cfg
}
