package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config" toml:"basic_config"`
	Databases   map[string]DatabaseConfig `json:"databases" toml:"databases"`
	Redis       RedisConfig               `json:"redis" toml:"redis"`
}

type BasicConfig struct {
	ServerAddress      string   `json:"server_address" toml:"server_address"`
	FilesDir           string   `json:"files_dir" toml:"files_dir"`
	UploadsDir         string   `json:"uploads_dir" toml:"uploads_dir"`
	MaxUploadMB        int64    `json:"max_upload_mb" toml:"max_upload_mb"`
	MaxEntryMB         int64    `json:"max_entry_mb" toml:"max_entry_mb"`
	ExtractWorkers     int      `json:"extract_workers" toml:"extract_workers"`
	UploadTTL          int      `json:"upload_ttl_minutes" toml:"upload_ttl_minutes"`
	UploadCleanMinutes int      `json:"upload_clean_interval_minutes" toml:"upload_clean_interval_minutes"`
	CORSOrigins        []string `json:"cors_origins" toml:"cors_origins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn" toml:"dsn"`
	Host     string `json:"host" toml:"host"`
	Port     int    `json:"port" toml:"port"`
	Username string `json:"username" toml:"username"`
	Password string `json:"password" toml:"password"`
	DBName   string `json:"db_name" toml:"db_name"`
	Params   string `json:"params" toml:"params"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled" toml:"enabled"`
	Host     string `json:"host" toml:"host"`
	Port     int    `json:"port" toml:"port"`
	Username string `json:"username" toml:"username"`
	Password string `json:"password" toml:"password"`
	DB       int    `json:"db" toml:"db"`
}

const (
	DefaultConfigPath    = "config.json"
	DefaultServerAddress = ":3001"
	DefaultFilesDir      = "files"
	DefaultUploadsDir    = "uploads"
	DefaultMaxUploadMB   = 100
	DefaultMaxEntryMB    = 256
	DefaultSQLiteDSN     = "chatview.db"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		BasicConfig: BasicConfig{
			ServerAddress:  DefaultServerAddress,
			FilesDir:       DefaultFilesDir,
			UploadsDir:     DefaultUploadsDir,
			MaxUploadMB:    DefaultMaxUploadMB,
			MaxEntryMB:     DefaultMaxEntryMB,
			ExtractWorkers: 1,
			CORSOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Databases: map[string]DatabaseConfig{
			"sqlite3": {DSN: DefaultSQLiteDSN},
		},
	}
}

// Load reads configuration from the provided path (defaults to config.json).
// Files ending in .toml are decoded as TOML, everything else as JSON. A
// missing default file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	cfg := Default()
	if err := decodeFile(absPath, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := cfg.normalize(filepath.Dir(absPath)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(absPath string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(absPath), ".toml") {
		if _, err := toml.DecodeFile(absPath, cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("open config %s: %w", absPath, err)
			}
			return fmt.Errorf("decode config: %w", err)
		}
		return nil
	}

	file, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.BasicConfig.ServerAddress = ":" + strings.TrimPrefix(port, ":")
	}
}

func (cfg *Config) normalize(baseDir string) error {
	b := &cfg.BasicConfig
	if b.ServerAddress == "" {
		b.ServerAddress = DefaultServerAddress
	}
	if b.FilesDir == "" {
		b.FilesDir = DefaultFilesDir
	}
	if b.UploadsDir == "" {
		b.UploadsDir = DefaultUploadsDir
	}
	if b.MaxUploadMB <= 0 {
		b.MaxUploadMB = DefaultMaxUploadMB
	}
	if b.MaxEntryMB <= 0 {
		b.MaxEntryMB = DefaultMaxEntryMB
	}
	if b.ExtractWorkers <= 0 {
		b.ExtractWorkers = 1
	}
	if b.FilesDir == b.UploadsDir {
		return fmt.Errorf("files_dir and uploads_dir must differ")
	}
	b.FilesDir = resolve(baseDir, b.FilesDir)
	b.UploadsDir = resolve(baseDir, b.UploadsDir)

	if sqliteCfg, ok := cfg.Databases["sqlite3"]; ok && sqliteCfg.DSN != "" && sqliteCfg.DSN != ":memory:" {
		sqliteCfg.DSN = resolve(baseDir, sqliteCfg.DSN)
		cfg.Databases["sqlite3"] = sqliteCfg
	}
	return nil
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// MaxUploadBytes is the upload size limit in bytes.
func (b BasicConfig) MaxUploadBytes() int64 {
	return b.MaxUploadMB << 20
}

// MaxEntryBytes is the decompressed size limit of one archive entry in bytes.
func (b BasicConfig) MaxEntryBytes() int64 {
	return b.MaxEntryMB << 20
}
