package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/quizdrill/backend/internal/domain/examconfig"
	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/importer"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

const (
	blobBank       = "bank"
	blobExamConfig = "exam_config"
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS blobs (
    name TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_results (
    id TEXT PRIMARY KEY,
    mode TEXT NOT NULL,
    retry_of TEXT NOT NULL DEFAULT '',
    total INTEGER NOT NULL,
    correct INTEGER NOT NULL,
    percent INTEGER NOT NULL,
    passed INTEGER NOT NULL DEFAULT 0,
    wrong_ids TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS blobs (
    name TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_results (
    id TEXT PRIMARY KEY,
    mode TEXT NOT NULL,
    retry_of TEXT NOT NULL DEFAULT '',
    total INTEGER NOT NULL,
    correct INTEGER NOT NULL,
    percent INTEGER NOT NULL,
    passed INTEGER NOT NULL DEFAULT 0,
    wrong_ids TEXT NOT NULL,
    started_at BIGINT NOT NULL,
    finished_at BIGINT NOT NULL
);
`

// SQLStore keeps everything in two tables: named JSON blobs for the bank
// and the exam configuration, and one row per finished session.
type SQLStore struct {
	db     *sql.DB
	driver Driver
}

// Open connects to the database and makes sure the schema exists. An empty
// dsn picks a local default for the driver.
func Open(ctx context.Context, driver Driver, dsn string) (*SQLStore, error) {
	var drvName, schema string
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		drvName = "sqlite" // modernc driver
		schema = schemaSQLite
		if dsn == "" {
			dsn = "file:quizdrill.db?mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		schema = schemaPostgres
		if dsn == "" {
			dsn = "postgres://localhost:5432/quizdrill?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Blobs
// ============================================================================

func (s *SQLStore) loadBlob(ctx context.Context, name string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *SQLStore) saveBlob(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO blobs (name, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		name, string(data), time.Now().UnixMilli())
	return err
}

// The bank blob uses the export format, so a stored bank can be exported or
// re-imported as-is.
func (s *SQLStore) LoadBank(ctx context.Context) ([]questionbank.Question, error) {
	data, err := s.loadBlob(ctx, blobBank)
	if err != nil {
		return nil, err
	}
	return decodeBank(data)
}

func (s *SQLStore) SaveBank(ctx context.Context, questions []questionbank.Question) error {
	data, err := encodeBank(questions)
	if err != nil {
		return err
	}
	return s.saveBlob(ctx, blobBank, data)
}

func (s *SQLStore) LoadExamConfig(ctx context.Context) (examconfig.Config, error) {
	data, err := s.loadBlob(ctx, blobExamConfig)
	if err != nil {
		return examconfig.Config{}, err
	}
	var cfg examconfig.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return examconfig.Config{}, fmt.Errorf("store: decode exam config: %w", err)
	}
	return cfg.Normalize(), nil
}

func (s *SQLStore) SaveExamConfig(ctx context.Context, cfg examconfig.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.saveBlob(ctx, blobExamConfig, data)
}

// ============================================================================
// Session history
// ============================================================================

func (s *SQLStore) SaveSessionResult(ctx context.Context, rec SessionRecord) error {
	wrong, err := json.Marshal(nonNil(rec.WrongIDs))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO session_results
		(id, mode, retry_of, total, correct, percent, passed, wrong_ids, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET total = EXCLUDED.total, correct = EXCLUDED.correct,
			percent = EXCLUDED.percent, passed = EXCLUDED.passed, wrong_ids = EXCLUDED.wrong_ids,
			finished_at = EXCLUDED.finished_at`,
		rec.ID, rec.Mode, rec.RetryOf, rec.Total, rec.Correct, rec.Percent, boolToInt(rec.Passed),
		string(wrong), rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli())
	return err
}

func (s *SQLStore) ListSessionResults(ctx context.Context, limit int) ([]SessionRecord, error) {
	query := `SELECT id, mode, retry_of, total, correct, percent, passed, wrong_ids, started_at, finished_at
		FROM session_results ORDER BY finished_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []SessionRecord{}
	for rows.Next() {
		var (
			rec               SessionRecord
			passed            int
			wrong             string
			started, finished int64
		)
		if err := rows.Scan(&rec.ID, &rec.Mode, &rec.RetryOf, &rec.Total, &rec.Correct, &rec.Percent,
			&passed, &wrong, &started, &finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(wrong), &rec.WrongIDs); err != nil {
			return nil, fmt.Errorf("store: decode wrong ids of %s: %w", rec.ID, err)
		}
		rec.Passed = passed != 0
		rec.StartedAt = time.UnixMilli(started)
		rec.FinishedAt = time.UnixMilli(finished)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ============================================================================
// Helpers
// ============================================================================

func encodeBank(questions []questionbank.Question) ([]byte, error) {
	var buf bytes.Buffer
	if err := importer.Export(&buf, questions); err != nil {
		return nil, fmt.Errorf("store: encode bank: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeBank(data []byte) ([]questionbank.Question, error) {
	questions, err := importer.ImportJSON(bytes.NewReader(data), importer.AnswerPolicyRequire)
	if err != nil {
		return nil, fmt.Errorf("store: decode bank: %w", err)
	}
	return questions, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
