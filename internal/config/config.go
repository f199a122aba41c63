package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Questionnaire QuestionnaireConfig `yaml:"questionnaire" mapstructure:"questionnaire"`
	Scorer        ScorerConfig        `yaml:"scorer" mapstructure:"scorer"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Report        ReportConfig        `yaml:"report" mapstructure:"report"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// QuestionnaireConfig selects the questionnaire definition.
type QuestionnaireConfig struct {
	// Path to a YAML or JSON definition. Empty uses the built-in KYB questionnaire.
	Path string `yaml:"path" mapstructure:"path"`
}

// ScorerConfig overrides the capacity coefficient tables. An empty map keeps
// the built-in weights for that table.
type ScorerConfig struct {
	Risk      map[string]float64 `yaml:"risk" mapstructure:"risk"`
	Horizon   map[string]float64 `yaml:"horizon" mapstructure:"horizon"`
	Objective map[string]float64 `yaml:"objective" mapstructure:"objective"`
}

// ServerConfig configures the HTTP session API.
type ServerConfig struct {
	Port              int      `yaml:"port" mapstructure:"port"`
	RateLimit         float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst         int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	SessionTTLMinutes int      `yaml:"session_ttl_minutes" mapstructure:"session_ttl_minutes"`
	MaxSessions       int      `yaml:"max_sessions" mapstructure:"max_sessions"`
	AllowedOrigins    []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// ReportConfig configures the spreadsheet export.
type ReportConfig struct {
	ProfileSheet string `yaml:"profile_sheet" mapstructure:"profile_sheet"`
	AnswersSheet string `yaml:"answers_sheet" mapstructure:"answers_sheet"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KYB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("questionnaire.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.session_ttl_minutes", 60)
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("report.profile_sheet", "Profil")
	v.SetDefault("report.answers_sheet", "Réponses")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by mode ("cli" or "serve").
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
			errs = append(errs, "server.rate_burst must be > 0 when rate limiting is enabled")
		}
		if c.Server.SessionTTLMinutes <= 0 {
			errs = append(errs, "server.session_ttl_minutes must be > 0")
		}
		if c.Server.MaxSessions < 0 {
			errs = append(errs, "server.max_sessions must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Report.ProfileSheet != "" && c.Report.ProfileSheet == c.Report.AnswersSheet {
		errs = append(errs, "report.profile_sheet and report.answers_sheet must differ")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
