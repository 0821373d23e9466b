// Package config loads the pipeline's single configuration object: the
// routing thresholds, content caps, feature flags and downstream
// credentials described in the external interfaces contract.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the PipelineConfig referenced throughout the design notes: one
// struct, built once at startup, passed down instead of read ad hoc.
type Config struct {
	Router    RouterConfig    `yaml:"router"`
	Limits    LimitsConfig    `yaml:"limits"`
	Features  FeaturesConfig  `yaml:"features"`
	Reasoner  ReasonerConfig  `yaml:"reasoner"`
	Database  DatabaseConfig  `yaml:"database"`
	RulePack  RulePackConfig  `yaml:"rulePack"`
	Server    ServerConfig    `yaml:"server"`
	Jurisdiction string       `yaml:"jurisdictionDefault"`
}

type RouterConfig struct {
	ShortThreshold int `yaml:"shortThreshold"`
	LongThreshold  int `yaml:"longThreshold"`
}

type LimitsConfig struct {
	MaxContentForAI int   `yaml:"maxContentForAI"`
	MaxTextLength   int   `yaml:"maxTextLength"`
	MaxMediaSize    int64 `yaml:"maxMediaSize"`
	MinPDFChars     int   `yaml:"minPdfChars"`
	MaxPDFPages     int   `yaml:"maxPdfPages"`
	OCRLanguages    string `yaml:"ocrLanguages"`
}

type FeaturesConfig struct {
	EnableHeadlessBrowser     bool `yaml:"enableHeadlessBrowser"`
	EnableAudioDownload       bool `yaml:"enableAudioDownload"`
	EnableFailsafeReanalysis  bool `yaml:"enableFailsafeReanalysis"`
	EnableScreenshotGrounding bool `yaml:"enableScreenshotGrounding"`
}

type ReasonerConfig struct {
	APIKey         string `yaml:"apiKey"`
	APIBase        string `yaml:"apiBase"`
	PrimaryModel   string `yaml:"primaryModel"`
	HeavyModel     string `yaml:"heavyModel"`
	FallbackModel  string `yaml:"fallbackModel"`
	TranscribeModel string `yaml:"transcribeModel"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	DatabaseName string `yaml:"databaseName"`
	TableName    string `yaml:"tableName"`
	Charset      string `yaml:"charset"`
}

type RulePackConfig struct {
	RootDir string `yaml:"rootDir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is supplied and no
// environment overrides apply, mirroring the defaults spec.md lists for
// every knob in the external interfaces section.
func Default() Config {
	return Config{
		Router: RouterConfig{ShortThreshold: 3000, LongThreshold: 10000},
		Limits: LimitsConfig{
			MaxContentForAI: 10000,
			MaxTextLength:   100000,
			MaxMediaSize:    100 << 20,
			MinPDFChars:     500,
			MaxPDFPages:     25,
			OCRLanguages:    "eng+hin",
		},
		Features: FeaturesConfig{
			EnableHeadlessBrowser:     true,
			EnableAudioDownload:       false,
			EnableFailsafeReanalysis:  true,
			EnableScreenshotGrounding: true,
		},
		Reasoner: ReasonerConfig{
			APIBase:         "https://api.openai.com/v1",
			PrimaryModel:    "gpt-4o",
			HeavyModel:      "gpt-4o",
			FallbackModel:   "gpt-4o-mini",
			TranscribeModel: "whisper-1",
		},
		Database: DatabaseConfig{
			DatabaseName: "adaudit",
			TableName:    "audit_records",
			Charset:      "utf8mb4",
		},
		RulePack:     RulePackConfig{RootDir: "./rulepacks"},
		Server:       ServerConfig{Addr: ":8080"},
		Jurisdiction: "India",
	}
}

// Load reads a YAML file at path (if non-empty) over the defaults, then
// applies environment overrides (SHORT_THRESHOLD, MAX_TEXT_LENGTH,
// REASONER_API_KEY and the other unprefixed knobs read by
// applyEnvOverrides) and resolves any secret
// references in the reasoner API key via GetSecureValue.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Reasoner.APIKey != "" {
		resolved, err := GetSecureValue(cfg.Reasoner.APIKey)
		if err != nil {
			return Config{}, fmt.Errorf("resolve reasoner api key: %w", err)
		}
		cfg.Reasoner.APIKey = resolved
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SHORT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Router.ShortThreshold = n
		}
	}
	if v := os.Getenv("LONG_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Router.LongThreshold = n
		}
	}
	if v := os.Getenv("MAX_CONTENT_FOR_AI"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxContentForAI = n
		}
	}
	if v := os.Getenv("MAX_TEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxTextLength = n
		}
	}
	if v := os.Getenv("MAX_MEDIA_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxMediaSize = n
		}
	}
	if v := os.Getenv("MIN_PDF_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MinPDFChars = n
		}
	}
	if v := os.Getenv("MAX_PDF_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxPDFPages = n
		}
	}
	if v := os.Getenv("OCR_LANGUAGES"); v != "" {
		cfg.Limits.OCRLanguages = v
	}
	if v := os.Getenv("ENABLE_HEADLESS_BROWSER"); v != "" {
		cfg.Features.EnableHeadlessBrowser = v == "true"
	}
	if v := os.Getenv("ENABLE_AUDIO_DOWNLOAD"); v != "" {
		cfg.Features.EnableAudioDownload = v == "true"
	}
	if v := os.Getenv("JURISDICTION_DEFAULT"); v != "" {
		cfg.Jurisdiction = v
	}
	if v := os.Getenv("REASONER_API_KEY"); v != "" {
		cfg.Reasoner.APIKey = v
	}
	if v := os.Getenv("RULEPACK_ROOT"); v != "" {
		cfg.RulePack.RootDir = v
	}
}
