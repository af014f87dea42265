// Package store archives validated reports in a local sqlite database.
// Every row holds the canonical document JSON plus the provenance the
// pipeline reported, so a report can be re-rendered or re-inspected
// without the original generator output.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sparlo/internal/logging"
	"sparlo/internal/pipeline"
	"sparlo/internal/rawjson"
)

// Entry is one archived report.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Mode      string    `json:"mode"`
	Variant   string    `json:"variant"`
	Lenient   bool      `json:"lenient"`
	Migrated  bool      `json:"migrated"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`

	// Document is the canonical report JSON. Empty on List results.
	Document []byte `json:"document,omitempty"`
}

// Store manages the report archive database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewStore creates or opens a report archive at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		mode TEXT NOT NULL,
		variant TEXT NOT NULL,
		lenient INTEGER NOT NULL DEFAULT 0,
		migrated INTEGER NOT NULL DEFAULT 0,
		source TEXT,
		created_at DATETIME NOT NULL,
		document_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_mode ON reports(mode);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveOutcome archives a pipeline outcome. Source records where the raw
// input came from (a file path, "api", "stdin").
func (s *Store) SaveOutcome(out *pipeline.Outcome, source string) (*Entry, error) {
	doc, err := json.Marshal(out.Doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	entry := &Entry{
		ID:        out.ID,
		Title:     textField(out.Doc, "title"),
		Mode:      textField(out.Doc, "mode"),
		Variant:   out.Variant,
		Lenient:   out.Lenient,
		Migrated:  out.Migrated,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Document:  doc,
	}
	if err := s.Save(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Save archives an entry.
func (s *Store) Save(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO reports (id, title, mode, variant, lenient, migrated, source, created_at, document_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Title, entry.Mode, entry.Variant, boolInt(entry.Lenient),
		boolInt(entry.Migrated), entry.Source, entry.CreatedAt, string(entry.Document))
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	logging.Store("archived report id=%s title=%q variant=%s", entry.ID, entry.Title, entry.Variant)
	return nil
}

// Get retrieves one archived report, document included.
func (s *Store) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, title, mode, variant, lenient, migrated, source, created_at, document_json
		FROM reports WHERE id = ?
	`, id)

	var entry Entry
	var lenient, migrated int
	var source sql.NullString
	var doc string
	err := row.Scan(&entry.ID, &entry.Title, &entry.Mode, &entry.Variant,
		&lenient, &migrated, &source, &entry.CreatedAt, &doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	entry.Lenient = lenient != 0
	entry.Migrated = migrated != 0
	entry.Source = source.String
	entry.Document = []byte(doc)
	return &entry, nil
}

// List returns archive entries newest first, without documents.
func (s *Store) List(limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, title, mode, variant, lenient, migrated, source, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var lenient, migrated int
		var source sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Mode, &entry.Variant,
			&lenient, &migrated, &source, &entry.CreatedAt); err != nil {
			continue
		}
		entry.Lenient = lenient != 0
		entry.Migrated = migrated != 0
		entry.Source = source.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Delete removes an archived report.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("report %s not found", id)
	}
	return nil
}

// Count returns the number of archived reports.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func textField(doc rawjson.Value, name string) string {
	v, ok := doc.Field(name)
	if !ok {
		return ""
	}
	text, _ := v.AsText()
	return text
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
