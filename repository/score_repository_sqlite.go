package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"credit-score/domain"
)

//go:embed sql/*
var ddl embed.FS

const (
	insertScoreSQL = `INSERT INTO score_record (id, created_at, score, status, applicant, attributions)
		VALUES (?, ?, ?, ?, ?, ?)`
	selectScoreSQL = `SELECT id, created_at, score, status, applicant, attributions
		FROM score_record WHERE id = ?`

	// Writers wait on the lock instead of failing with SQLITE_BUSY.
	sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
)

// ScoreRepositorySQLite persists score records in a SQLite file.
type ScoreRepositorySQLite struct {
	db *sql.DB
}

// OpenScoreRepositorySQLite opens (creating when needed) the database at path
// and applies the schema.
func OpenScoreRepositorySQLite(ctx context.Context, path string) (*ScoreRepositorySQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path not specified")
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// SQLite has a single writer; one connection serializes saves.
	db.SetMaxOpenConns(1)

	b, err := ddl.ReadFile("sql/ddl.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(b)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &ScoreRepositorySQLite{db: db}, nil
}

func (r *ScoreRepositorySQLite) Save(ctx context.Context, rec domain.ScoreRecord) error {
	applicant, err := json.Marshal(rec.Applicant)
	if err != nil {
		return fmt.Errorf("marshaling applicant: %w", err)
	}
	attributions, err := json.Marshal(rec.Attributions)
	if err != nil {
		return fmt.Errorf("marshaling attributions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertScoreSQL,
		rec.ID,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Score,
		string(rec.Status),
		string(applicant),
		string(attributions),
	)
	if err != nil {
		return fmt.Errorf("inserting score record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *ScoreRepositorySQLite) Get(ctx context.Context, id string) (domain.ScoreRecord, error) {
	var (
		rec                     domain.ScoreRecord
		createdAt, status       string
		applicant, attributions string
	)
	err := r.db.QueryRowContext(ctx, selectScoreSQL, id).
		Scan(&rec.ID, &createdAt, &rec.Score, &status, &applicant, &attributions)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScoreRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("querying score record %s: %w", id, err)
	}

	rec.Status = domain.LoanStatus(status)
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("parsing created_at of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(applicant), &rec.Applicant); err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("decoding applicant of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(attributions), &rec.Attributions); err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("decoding attributions of %s: %w", id, err)
	}
	return rec, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}
	return path + "?" + sqlitePragmas
}

func (r *ScoreRepositorySQLite) Close() error {
	return r.db.Close()
}
