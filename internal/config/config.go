// Package config loads server settings from an optional YAML file, a .env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LLMConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig addresses an S3-compatible bucket. For Supabase Storage set
// SupabaseURL (or SUPABASE_URL) to the project URL and supply the S3 access
// key pair from the project's storage settings; the service-role key is not
// an S3 credential.
type StorageConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	SupabaseURL  string        `mapstructure:"supabase_url"`
	Region       string        `mapstructure:"region"`
	Bucket       string        `mapstructure:"bucket"`
	AccessKey    string        `mapstructure:"access_key"`
	SecretKey    string        `mapstructure:"secret_key"`
	UsePathStyle bool          `mapstructure:"use_path_style"`
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl"`
}

type FetchConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

type PromptConfig struct {
	Encoding  string `mapstructure:"encoding"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

const envPrefix = "STUDYHUB"

// legacyEnv lists the environment names the previous deployment used.
var legacyEnv = map[string][]string{
	"llm.api_key":          {"GROQ_API_KEY"},
	"storage.supabase_url": {"SUPABASE_URL"},
}

// supabaseS3Path is where Supabase serves its S3-compatible API.
const supabaseS3Path = "/storage/v1/s3"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.max_upload_bytes", 32<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("database.path", "studyhub.db")

	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.supabase_url", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "filesb")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_path_style", true)
	v.SetDefault("storage.signed_url_ttl", time.Hour)

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.max_bytes", 32<<20)

	v.SetDefault("prompt.encoding", "cl100k_base")
	v.SetDefault("prompt.max_tokens", 24000)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}

// Load reads configuration. An empty path searches ./configs and . for an
// optional config.yaml; a named file must exist.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		envs := append([]string{envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Storage.Endpoint == "" && cfg.Storage.SupabaseURL != "" {
		cfg.Storage.Endpoint = strings.TrimRight(cfg.Storage.SupabaseURL, "/") + supabaseS3Path
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.LLM.BaseURL == "" {
		return errors.New("llm.base_url is required")
	}
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required (or GROQ_API_KEY)")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("invalid llm.timeout: %s", c.LLM.Timeout)
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required")
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		return errors.New("storage.access_key and storage.secret_key must be set together")
	}
	if c.Storage.SignedURLTTL <= 0 {
		return fmt.Errorf("invalid storage.signed_url_ttl: %s", c.Storage.SignedURLTTL)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("invalid fetch.timeout: %s", c.Fetch.Timeout)
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("invalid fetch.max_bytes: %d", c.Fetch.MaxBytes)
	}
	if c.Prompt.MaxTokens < 0 {
		return fmt.Errorf("invalid prompt.max_tokens: %d", c.Prompt.MaxTokens)
	}
	return nil
}
