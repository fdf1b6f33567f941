package library

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"storyreel/internal/cluster"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users reimport their footage after schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match
// the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages footage persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the library database at path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure library dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s and reimport)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// ImportSegments inserts analyzed segments for a project. Previously
// imported segments for the same video paths are replaced so reimports
// stay idempotent.
func (s *Store) ImportSegments(ctx context.Context, project string, segments []cluster.VideoSegment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seen := make(map[string]struct{})
	for _, seg := range segments {
		if _, ok := seen[seg.VideoPath]; ok {
			continue
		}
		seen[seg.VideoPath] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM segments WHERE project = ? AND video_path = ?`,
			project, seg.VideoPath); err != nil {
			return 0, fmt.Errorf("clear prior segments: %w", err)
		}
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	inserted := 0
	for _, seg := range segments {
		contextJSON, err := marshalContext(seg.Context)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO segments (
                project, video_path, start_seconds, end_seconds,
                frame_description, transcript, combined_summary, context_json, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			project,
			seg.VideoPath,
			seg.TimestampStart,
			seg.TimestampEnd,
			nullableString(seg.FrameDescription),
			nullableString(seg.Transcript),
			nullableString(seg.CombinedSummary),
			contextJSON,
			timestamp,
		); err != nil {
			return 0, fmt.Errorf("insert segment: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return inserted, nil
}

// ListSegments returns a project's segments ordered by video path and
// start time.
func (s *Store) ListSegments(ctx context.Context, project string) ([]cluster.VideoSegment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_path, start_seconds, end_seconds, frame_description, transcript, combined_summary, context_json
         FROM segments WHERE project = ? ORDER BY video_path, start_seconds`,
		project)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segments []cluster.VideoSegment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// ReplaceClusters overwrites a project's stored clusters with a fresh
// clustering result.
func (s *Store) ReplaceClusters(ctx context.Context, project string, clusters []cluster.SceneCluster) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cluster tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clusters WHERE project = ?`, project); err != nil {
		return fmt.Errorf("clear prior clusters: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for _, c := range clusters {
		if len(c.Segments) == 0 {
			continue
		}
		peopleJSON, err := json.Marshal(c.People())
		if err != nil {
			return fmt.Errorf("marshal cluster people: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO clusters (
                project, cluster_index, video_path, start_seconds, end_seconds,
                summary, transcript, people_json, segment_count, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			project,
			c.ID,
			c.Segments[0].VideoPath,
			c.Start(),
			c.End(),
			nullableString(c.Summary),
			nullableString(c.CombinedTranscript()),
			string(peopleJSON),
			len(c.Segments),
			timestamp,
		); err != nil {
			return fmt.Errorf("insert cluster: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clusters: %w", err)
	}
	return nil
}

// ClusterRecord is a persisted scene cluster summary row.
type ClusterRecord struct {
	Index        int      `json:"index"`
	VideoPath    string   `json:"video_path"`
	StartSeconds float64  `json:"start_seconds"`
	EndSeconds   float64  `json:"end_seconds"`
	Summary      string   `json:"summary,omitempty"`
	Transcript   string   `json:"transcript,omitempty"`
	People       []string `json:"people,omitempty"`
	SegmentCount int      `json:"segment_count"`
}

// ListClusters returns a project's stored clusters in index order.
func (s *Store) ListClusters(ctx context.Context, project string) ([]ClusterRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cluster_index, video_path, start_seconds, end_seconds, summary, transcript, people_json, segment_count
         FROM clusters WHERE project = ? ORDER BY cluster_index`,
		project)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	defer rows.Close()

	var records []ClusterRecord
	for rows.Next() {
		var (
			rec        ClusterRecord
			summary    sql.NullString
			transcript sql.NullString
			peopleRaw  sql.NullString
		)
		if err := rows.Scan(&rec.Index, &rec.VideoPath, &rec.StartSeconds, &rec.EndSeconds,
			&summary, &transcript, &peopleRaw, &rec.SegmentCount); err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		rec.Summary = summary.String
		rec.Transcript = transcript.String
		if peopleRaw.Valid && peopleRaw.String != "" {
			if err := json.Unmarshal([]byte(peopleRaw.String), &rec.People); err != nil {
				return nil, fmt.Errorf("decode cluster people: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats reports row counts per project table.
type Stats struct {
	Segments int `json:"segments"`
	Clusters int `json:"clusters"`
	Videos   int `json:"videos"`
}

// ProjectStats counts a project's stored footage.
func (s *Store) ProjectStats(ctx context.Context, project string) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COUNT(DISTINCT video_path) FROM segments WHERE project = ?`, project)
	if err := row.Scan(&stats.Segments, &stats.Videos); err != nil {
		return Stats{}, fmt.Errorf("segment stats: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clusters WHERE project = ?`, project)
	if err := row.Scan(&stats.Clusters); err != nil {
		return Stats{}, fmt.Errorf("cluster stats: %w", err)
	}
	return stats, nil
}

func scanSegment(scanner interface{ Scan(dest ...any) error }) (cluster.VideoSegment, error) {
	var (
		seg         cluster.VideoSegment
		frameDesc   sql.NullString
		transcript  sql.NullString
		summary     sql.NullString
		contextJSON sql.NullString
	)
	if err := scanner.Scan(&seg.VideoPath, &seg.TimestampStart, &seg.TimestampEnd,
		&frameDesc, &transcript, &summary, &contextJSON); err != nil {
		return cluster.VideoSegment{}, fmt.Errorf("scan segment: %w", err)
	}
	seg.FrameDescription = frameDesc.String
	seg.Transcript = transcript.String
	seg.CombinedSummary = summary.String
	if contextJSON.Valid && contextJSON.String != "" {
		var inferred cluster.InferredContext
		if err := json.Unmarshal([]byte(contextJSON.String), &inferred); err != nil {
			return cluster.VideoSegment{}, fmt.Errorf("decode segment context: %w", err)
		}
		seg.Context = &inferred
	}
	return seg, nil
}

func marshalContext(inferred *cluster.InferredContext) (any, error) {
	if inferred == nil {
		return nil, nil
	}
	data, err := json.Marshal(inferred)
	if err != nil {
		return nil, fmt.Errorf("marshal segment context: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
