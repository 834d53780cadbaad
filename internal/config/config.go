package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Drive    DriveConfig
	PDF      PDFConfig
	Output   OutputConfig
	LLM      LLMConfig
	Store    StoreConfig
	Tracing  TracingConfig
	Archive  ArchiveConfig
	LogLevel string
}

// DriveConfig holds Google Drive settings.
type DriveConfig struct {
	AuthMode    string // "oauth" or "service_account"
	Credentials string // OAuth client secrets file
	Token       string // cached OAuth token file
	SAKey       string // service account key file
	FolderName  string // exact name of the target folder
}

// PDFConfig holds extraction settings.
type PDFConfig struct {
	Engine   string // "poppler", "native" or "ocr"
	Password string // shared static password for encrypted statements
}

// OutputConfig holds local artifact locations.
type OutputConfig struct {
	Dir      string // root for pdfs/ and texts/
	LLMDir   string // structured JSON outputs
	MaxFiles int    // 0 = process all
}

// LLMConfig holds provider settings.
type LLMConfig struct {
	Provider    string // "openai" or "gemini"
	APIKey      string
	BaseURL     string // optional override, openai only
	Model       string
	Temperature float64
	PromptID    string
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	Strategy         string // "postgres", "sqlite", "bigquery" or "notion"
	DatabaseURL      string
	SQLitePath       string
	BigQueryProject  string
	BigQueryDataset  string
	NotionToken      string
	NotionDatabaseID string
}

// TracingConfig holds Langfuse credentials. Tracing is disabled unless
// both keys are set.
type TracingConfig struct {
	SecretKey string
	PublicKey string
	Host      string
}

// ArchiveConfig holds the optional GCS artifact archive settings.
// Archiving is disabled when Bucket is empty.
type ArchiveConfig struct {
	Bucket string
	Prefix string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("gdrive_auth_mode", "oauth")
	v.SetDefault("gdrive_credentials", "credentials.json")
	v.SetDefault("gdrive_token", "token.json")
	v.SetDefault("gdrive_sa_key", "")
	v.SetDefault("target_folder_name", "Bank_Statements")

	v.SetDefault("pdf_engine", "poppler")
	v.SetDefault("pdf_password", "")

	v.SetDefault("output_dir", "processed_statements")
	v.SetDefault("llm_output_dir", "")
	v.SetDefault("max_files", 0)

	v.SetDefault("log_level", "info")

	v.SetDefault("llm_provider", "gemini")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_temperature", 0.0)
	v.SetDefault("prompt_id", "transaction_extraction")

	v.SetDefault("db_strategy", "postgres")
	v.SetDefault("database_url", "")
	v.SetDefault("sqlite_path", "transactions.db")
	v.SetDefault("bigquery_project", "")
	v.SetDefault("bigquery_dataset", "finance")
	v.SetDefault("notion_token", "")
	v.SetDefault("notion_database_id", "")

	v.SetDefault("langfuse_secret_key", "")
	v.SetDefault("langfuse_public_key", "")
	v.SetDefault("langfuse_host", "https://cloud.langfuse.com")

	v.SetDefault("archive_bucket", "")
	v.SetDefault("archive_prefix", "statements")

	v.AutomaticEnv()

	cfg := Config{
		Drive: DriveConfig{
			AuthMode:    v.GetString("gdrive_auth_mode"),
			Credentials: v.GetString("gdrive_credentials"),
			Token:       v.GetString("gdrive_token"),
			SAKey:       v.GetString("gdrive_sa_key"),
			FolderName:  v.GetString("target_folder_name"),
		},
		PDF: PDFConfig{
			Engine:   v.GetString("pdf_engine"),
			Password: v.GetString("pdf_password"),
		},
		Output: OutputConfig{
			Dir:      v.GetString("output_dir"),
			LLMDir:   v.GetString("llm_output_dir"),
			MaxFiles: v.GetInt("max_files"),
		},
		LLM: LLMConfig{
			Provider:    v.GetString("llm_provider"),
			APIKey:      v.GetString("llm_api_key"),
			BaseURL:     v.GetString("llm_base_url"),
			Model:       v.GetString("llm_model"),
			Temperature: v.GetFloat64("llm_temperature"),
			PromptID:    v.GetString("prompt_id"),
		},
		Store: StoreConfig{
			Strategy:         v.GetString("db_strategy"),
			DatabaseURL:      v.GetString("database_url"),
			SQLitePath:       v.GetString("sqlite_path"),
			BigQueryProject:  v.GetString("bigquery_project"),
			BigQueryDataset:  v.GetString("bigquery_dataset"),
			NotionToken:      v.GetString("notion_token"),
			NotionDatabaseID: v.GetString("notion_database_id"),
		},
		Tracing: TracingConfig{
			SecretKey: v.GetString("langfuse_secret_key"),
			PublicKey: v.GetString("langfuse_public_key"),
			Host:      v.GetString("langfuse_host"),
		},
		Archive: ArchiveConfig{
			Bucket: v.GetString("archive_bucket"),
			Prefix: v.GetString("archive_prefix"),
		},
		LogLevel: v.GetString("log_level"),
	}

	if cfg.Output.LLMDir == "" {
		cfg.Output.LLMDir = cfg.Output.Dir + "/llm_outputs"
	}
	if cfg.Output.MaxFiles < 0 {
		return Config{}, fmt.Errorf("config.Load: max_files must be >= 0, got %d", cfg.Output.MaxFiles)
	}

	return cfg, nil
}
