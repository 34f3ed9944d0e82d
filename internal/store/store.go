// Package store handles SQLite persistence of session history.
package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/keydrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			duration_s INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			final_wpm REAL NOT NULL,
			avg_wpm REAL NOT NULL,
			peak_wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			correct_chars INTEGER NOT NULL,
			wrong_attempts INTEGER NOT NULL,
			total_attempts INTEGER NOT NULL,
			require_correction INTEGER NOT NULL,
			mode TEXT NOT NULL,
			source TEXT NOT NULL,
			max_word_length INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_samples (
			session_id INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			correct_chars INTEGER NOT NULL,
			PRIMARY KEY (session_id, elapsed_ms)
		);`,
		`CREATE TABLE IF NOT EXISTS session_keys (
			session_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			latency_ms_sum INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_finished_at ON sessions(finished_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed session, its timing series, and its
// per-key statistics.
func (s *Store) InsertSession(ctx context.Context, rec model.HistoryRecord, samples []model.TimingSample, keys []model.KeyStat) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, finished_at, duration_s, elapsed_ms, final_wpm, avg_wpm, peak_wpm, accuracy, correct_chars, wrong_attempts, total_attempts, require_correction, mode, source, max_word_length)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.FinishedAt.Format(time.RFC3339Nano),
		rec.DurationSeconds,
		rec.Elapsed.Milliseconds(),
		rec.FinalWPM,
		rec.AvgWPM,
		rec.PeakWPM,
		rec.Accuracy,
		rec.CorrectChars,
		rec.WrongAttempts,
		rec.TotalAttempts,
		boolToInt(rec.RequireCorrection),
		string(rec.Mode),
		string(rec.Source),
		rec.MaxWordLength,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(samples) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_samples (session_id, elapsed_ms, correct_chars) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, sample := range samples {
			if _, err := stmt.ExecContext(ctx, id, sample.Elapsed.Milliseconds(), sample.CorrectChars); err != nil {
				return 0, err
			}
		}
	}

	if len(keys) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_keys (session_id, char, attempts, errors, latency_ms_sum, latency_count) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, key := range keys {
			if _, err := stmt.ExecContext(ctx, id, key.Char, key.Attempts, key.Errors, key.LatencySumMs, key.LatencyCount); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns stored sessions filtered and ordered by finish time.
func (s *Store) ListSessions(ctx context.Context, filter model.HistoryFilter) ([]model.HistoryEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Since != nil {
		clauses = append(clauses, "finished_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, finished_at, duration_s, elapsed_ms, final_wpm, avg_wpm, peak_wpm, accuracy, correct_chars, wrong_attempts, total_attempts, require_correction, mode, source, max_word_length
		FROM sessions
		WHERE %s
		ORDER BY finished_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var startedAt, finishedAt, mode, source string
		var elapsedMs int64
		var requireCorrection int
		if err := rows.Scan(&entry.ID, &startedAt, &finishedAt, &entry.DurationSeconds, &elapsedMs,
			&entry.FinalWPM, &entry.AvgWPM, &entry.PeakWPM, &entry.Accuracy,
			&entry.CorrectChars, &entry.WrongAttempts, &entry.TotalAttempts,
			&requireCorrection, &mode, &source, &entry.MaxWordLength); err != nil {
			return nil, err
		}
		if entry.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if entry.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, err
		}
		entry.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		entry.RequireCorrection = requireCorrection != 0
		entry.Mode = model.Mode(mode)
		entry.Source = model.SourceKind(source)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(entries) > filter.Last {
		entries = entries[len(entries)-filter.Last:]
	}
	return entries, nil
}

// ListSamples returns the timing series of one session, ordered by time.
func (s *Store) ListSamples(ctx context.Context, sessionID int64) ([]model.TimingSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT elapsed_ms, correct_chars FROM session_samples WHERE session_id = ? ORDER BY elapsed_ms ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var samples []model.TimingSample
	for rows.Next() {
		var elapsedMs int64
		var sample model.TimingSample
		if err := rows.Scan(&elapsedMs, &sample.CorrectChars); err != nil {
			return nil, err
		}
		sample.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// ListKeyStats aggregates per-key statistics across the filtered
// sessions, ordered by character.
func (s *Store) ListKeyStats(ctx context.Context, filter model.HistoryFilter) ([]model.KeyStat, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Since != nil {
		clauses = append(clauses, "finished_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	limit := -1 // SQLite treats a negative LIMIT as unbounded.
	if filter.Last > 0 {
		limit = filter.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT char, SUM(attempts), SUM(errors), SUM(latency_ms_sum), SUM(latency_count)
		FROM session_keys
		WHERE session_id IN (SELECT id FROM sessions WHERE %s ORDER BY finished_at DESC LIMIT ?)
		GROUP BY char
		ORDER BY char ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var stats []model.KeyStat
	for rows.Next() {
		var stat model.KeyStat
		if err := rows.Scan(&stat.Char, &stat.Attempts, &stat.Errors, &stat.LatencySumMs, &stat.LatencyCount); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// ExportCSV writes the filtered sessions as CSV, header first.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer, filter model.HistoryFilter) error {
	entries, err := s.ListSessions(ctx, filter)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{
		"timestamp", "duration_seconds", "elapsed_seconds", "final_wpm", "avg_wpm", "peak_wpm",
		"accuracy", "correct_chars", "errors", "correction_mode", "mode", "source", "max_word_length",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatInt(e.FinishedAt.Unix(), 10),
			strconv.Itoa(e.DurationSeconds),
			strconv.FormatFloat(e.Elapsed.Seconds(), 'f', 2, 64),
			strconv.FormatFloat(e.FinalWPM, 'f', 2, 64),
			strconv.FormatFloat(e.AvgWPM, 'f', 2, 64),
			strconv.FormatFloat(e.PeakWPM, 'f', 2, 64),
			strconv.FormatFloat(e.Accuracy, 'f', 4, 64),
			strconv.Itoa(e.CorrectChars),
			strconv.Itoa(e.WrongAttempts),
			strconv.FormatBool(e.RequireCorrection),
			string(e.Mode),
			string(e.Source),
			strconv.Itoa(e.MaxWordLength),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
