package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"chatview/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the configured database driver.
func Open(dbType string, cfg *config.Config) (*sql.DB, error) {
	dbCfg, ok := cfg.Databases[dbType]
	if !ok {
		return nil, fmt.Errorf("database config for %s not found", dbType)
	}

	var (
		db  *sql.DB
		err error
	)

	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3":
		if dbCfg.DSN == "" {
			return nil, fmt.Errorf("sqlite dsn must be provided")
		}
		db, err = sql.Open("sqlite3", dbCfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// one writer keeps sqlite from reporting "database is locked"
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	case "mysql":
		dsn := dbCfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
				dbCfg.Username,
				dbCfg.Password,
				dbCfg.Host,
				dbCfg.Port,
				dbCfg.DBName,
				dbCfg.Params,
			)
		}
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", dbType)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the required tables are present.
func Migrate(db *sql.DB, driver string) error {
	var stmts []string
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS imports (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				archive_name TEXT NOT NULL,
				chat_file_name TEXT NOT NULL,
				total_messages INTEGER NOT NULL,
				extracted_files INTEGER NOT NULL,
				failed_files INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS stored_files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				import_id INTEGER NOT NULL,
				file_name TEXT NOT NULL,
				entry_name TEXT NOT NULL,
				kind TEXT NOT NULL,
				size INTEGER NOT NULL,
				created_at DATETIME NOT NULL,
				FOREIGN KEY(import_id) REFERENCES imports(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_imports_created_at ON imports(created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_stored_files_import ON stored_files(import_id)`,
			`CREATE INDEX IF NOT EXISTS idx_stored_files_name ON stored_files(file_name)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS imports (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				archive_name VARCHAR(255) NOT NULL,
				chat_file_name VARCHAR(1024) NOT NULL,
				total_messages INT NOT NULL,
				extracted_files INT NOT NULL,
				failed_files INT NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_imports_created_at (created_at)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS stored_files (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				import_id BIGINT UNSIGNED NOT NULL,
				file_name VARCHAR(255) NOT NULL,
				entry_name VARCHAR(1024) NOT NULL,
				kind VARCHAR(16) NOT NULL,
				size BIGINT NOT NULL,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_stored_files_name (file_name),
				INDEX idx_stored_files_import (import_id),
				CONSTRAINT fk_stored_files_import FOREIGN KEY (import_id) REFERENCES imports(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}
