package config

import (
	"strings"

	"dario.cat/mergo"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Validation ValidationConfig `mapstructure:"validation"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	DatabaseName     string `mapstructure:"database_name"`
}

// StorageConfig holds the schema storage configuration.
type StorageConfig struct {
	Type    string          `mapstructure:"type"` // file, mongodb
	MongoDB DatabaseConfig  `mapstructure:"mongodb"`
	File    FileStoreConfig `mapstructure:"file"`
}

// FileStoreConfig holds the file system storage configuration.
type FileStoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, text
	Output     string `mapstructure:"output"`      // stdout, file
	FilePath   string `mapstructure:"file_path"`   // Path to log file
	MaxSize    int    `mapstructure:"max_size"`    // Megabytes
	MaxBackups int    `mapstructure:"max_backups"` // Number of backups
	MaxAge     int    `mapstructure:"max_age"`     // Days
	Compress   bool   `mapstructure:"compress"`    // Compress backups
}

// ValidationConfig controls how schemas are compiled and documents checked.
type ValidationConfig struct {
	MetaValidation   bool   `mapstructure:"meta_validation"`   // Check schemas against the draft-07 meta-schema
	BatchConcurrency int    `mapstructure:"batch_concurrency"` // Documents validated at once per batch
	SeedDir          string `mapstructure:"seed_dir"`          // Schemas loaded at startup
	DocsDir          string `mapstructure:"docs_dir"`          // Directory holding user_guide.md
}

// Defaults returns the values used for every setting left empty.
func Defaults() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Storage: StorageConfig{
			Type: "file",
			MongoDB: DatabaseConfig{
				ConnectionString: "mongodb://localhost:27017",
				DatabaseName:     "schemaguard",
			},
			File: FileStoreConfig{Path: "./data"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Validation: ValidationConfig{
			BatchConcurrency: 8,
			SeedDir:          "./schemas",
			DocsDir:          "./docs",
		},
	}
}

// LoadConfig reads the configuration from config files and environment variables.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..") // Check project root if running from cmd/schemaguard

	viper.SetEnvPrefix("SCHEMAGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return nil, err
	}

	return &cfg, nil
}
