package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem every command reads and writes through.
var AppFs = afero.NewOsFs()

// FileName is the base name of the project configuration file.
const FileName = ".sqlorm"

// Config holds the application configuration
type Config struct {
	Provider        string
	SchemaPath      string
	DatabaseURL     string
	Debug           bool
	UnboundedLimit  int64
	RequiredVersion string
}

// LoadConfig loads configuration from the config file, .env files and
// SQLORM_* environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "sqlorm"))

	v.SetEnvPrefix("SQLORM")
	v.AutomaticEnv()

	v.SetDefault("provider", "sqlite")
	v.SetDefault("schema_path", "schema.sqlorm")
	v.SetDefault("debug", false)
	v.SetDefault("unbounded_limit", int64(0))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	loadEnvFiles()

	url := v.GetString("database_url")
	if env := os.Getenv("DATABASE_URL"); env != "" && url == "" {
		url = env
	}

	return &Config{
		Provider:        v.GetString("provider"),
		SchemaPath:      v.GetString("schema_path"),
		DatabaseURL:     url,
		Debug:           v.GetBool("debug"),
		UnboundedLimit:  v.GetInt64("unbounded_limit"),
		RequiredVersion: v.GetString("required_version"),
	}, nil
}

func loadEnvFiles() {
	if _, err := AppFs.Stat(".env"); err == nil {
		// A malformed .env is ignored
		_ = godotenv.Load()
	}
	// .env.local wins over .env
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}
}

// SaveConfig writes cfg as <dir>/.sqlorm.yaml. The database URL is not
// written; it belongs in .env.
func SaveConfig(dir string, cfg *Config) (string, error) {
	v := viper.New()
	v.SetFs(AppFs)
	v.Set("provider", cfg.Provider)
	v.Set("schema_path", cfg.SchemaPath)
	v.Set("debug", cfg.Debug)
	if cfg.UnboundedLimit > 0 {
		v.Set("unbounded_limit", cfg.UnboundedLimit)
	}
	if cfg.RequiredVersion != "" {
		v.Set("required_version", cfg.RequiredVersion)
	}

	if err := AppFs.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName+".yaml")
	return path, v.WriteConfigAs(path)
}
