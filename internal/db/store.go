package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

const dbFile = "linkfind.db"

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrFolderExists   = errors.New("folder already exists")
	ErrFolderDepth    = errors.New("sub-folders cannot contain folders")
	ErrLinkNotFound   = errors.New("link not found")
	ErrLinkExists     = errors.New("link already saved")
)

type Store struct {
	db *sql.DB
}

// Path returns the database file used for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, dbFile)
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", Path(dataDir)+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS folders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		parent_id TEXT REFERENCES folders(id) ON DELETE CASCADE,
		is_sub_folder INTEGER NOT NULL DEFAULT 0,
		color TEXT NOT NULL DEFAULT '#3B82F6',
		icon TEXT NOT NULL DEFAULT '📁',
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_folders_unique_name
		ON folders(user_id, name, IFNULL(parent_id, ''));
	CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);

	CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'other',
		folder_id TEXT NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
		is_favorite INTEGER NOT NULL DEFAULT 0,
		author TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_links_folder ON links(folder_id);
	CREATE INDEX IF NOT EXISTS idx_links_user_created ON links(user_id, created_at);

	CREATE TABLE IF NOT EXISTS link_tags (
		link_id TEXT NOT NULL REFERENCES links(id) ON DELETE CASCADE,
		tag TEXT NOT NULL,
		PRIMARY KEY (link_id, tag)
	);

	CREATE INDEX IF NOT EXISTS idx_link_tags_tag ON link_tags(tag);
	`

	_, err := s.db.Exec(schema)
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// likePattern escapes LIKE wildcards in q and wraps it for a substring match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
