package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/soaringjerry/synap-reliability/internal/services"
)

var (
	_ services.ScaleStore    = (*SQLiteStore)(nil)
	_ services.ResponseStore = (*SQLiteStore)(nil)
	_ services.AnalysisStore = (*SQLiteStore)(nil)
	_ services.AuthStore     = (*SQLiteStore)(nil)
)

type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens the SQLite database at path. Use ":memory:" for a throwaway
// database; it is limited to one connection so every query sees the same
// schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return db, nil
}

func NewSQLiteStore(db *sql.DB, logger *zap.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, logger: logger.Named("sqlite")}, nil
}

func contextBg() context.Context { return context.Background() }

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (s *SQLiteStore) decodeStringMap(ns sql.NullString) map[string]string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		s.logger.Warn("decode string map", zap.Error(err))
		return nil
	}
	return out
}

func (s *SQLiteStore) InsertScale(sc *services.Scale) error {
	name, err := encodeJSON(sc.NameI18n)
	if err != nil {
		return fmt.Errorf("encode scale name: %w", err)
	}
	_, err = s.db.ExecContext(contextBg(),
		`INSERT INTO scales (id, tenant_id, points, name_i18n, created_at) VALUES (?, ?, ?, ?, ?)`,
		sc.ID, sc.TenantID, sc.Points, name, sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scale %s: %w", sc.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetScale(id string) (*services.Scale, error) {
	row := s.db.QueryRowContext(contextBg(),
		`SELECT id, tenant_id, points, name_i18n, created_at FROM scales WHERE id = ?`, id)
	var (
		sc   services.Scale
		name sql.NullString
	)
	if err := row.Scan(&sc.ID, &sc.TenantID, &sc.Points, &name, &sc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get scale %s: %w", id, err)
	}
	sc.NameI18n = s.decodeStringMap(name)
	return &sc, nil
}

func (s *SQLiteStore) InsertItem(it *services.Item) error {
	stem, err := encodeJSON(it.StemI18n)
	if err != nil {
		return fmt.Errorf("encode item stem: %w", err)
	}
	typ := it.Type
	if typ == "" {
		typ = services.ItemLikert
	}
	_, err = s.db.ExecContext(contextBg(),
		`INSERT INTO items (id, scale_id, position, type, reverse_scored, stem_i18n) VALUES (?, ?, ?, ?, ?, ?)`,
		it.ID, it.ScaleID, it.Position, typ, boolToInt64(it.ReverseScored), stem)
	if err != nil {
		return fmt.Errorf("insert item %s: %w", it.ID, err)
	}
	return nil
}

func (s *SQLiteStore) ListItems(scaleID string) ([]*services.Item, error) {
	rows, err := s.db.QueryContext(contextBg(),
		`SELECT id, scale_id, position, type, reverse_scored, stem_i18n FROM items WHERE scale_id = ? ORDER BY position, id`, scaleID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	out := []*services.Item{}
	for rows.Next() {
		var (
			it      services.Item
			reverse int64
			stem    sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.ScaleID, &it.Position, &it.Type, &reverse, &stem); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.ReverseScored = reverse != 0
		it.StemI18n = s.decodeStringMap(stem)
		out = append(out, &it)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ReplaceDimensions(scaleID string, dims []services.Dimension) error {
	ctx := contextBg()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dimensions tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM dimensions WHERE scale_id = ?`, scaleID); err != nil {
		return fmt.Errorf("clear dimensions: %w", err)
	}
	for i, d := range dims {
		ids, err := json.Marshal(d.ItemIDs)
		if err != nil {
			return fmt.Errorf("encode dimension %s: %w", d.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dimensions (scale_id, name, position, item_ids) VALUES (?, ?, ?, ?)`,
			scaleID, d.Name, i, string(ids)); err != nil {
			return fmt.Errorf("insert dimension %s: %w", d.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dimensions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListDimensions(scaleID string) ([]services.Dimension, error) {
	rows, err := s.db.QueryContext(contextBg(),
		`SELECT name, item_ids FROM dimensions WHERE scale_id = ? ORDER BY position`, scaleID)
	if err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	defer rows.Close()
	var out []services.Dimension
	for rows.Next() {
		var (
			d   services.Dimension
			ids string
		)
		if err := rows.Scan(&d.Name, &ids); err != nil {
			return nil, fmt.Errorf("scan dimension: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &d.ItemIDs); err != nil {
			return nil, fmt.Errorf("decode dimension %s: %w", d.Name, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddParticipant(p *services.Participant) error {
	_, err := s.db.ExecContext(contextBg(),
		`INSERT INTO participants (id, scale_id, email, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.ScaleID, toNullString(p.Email), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert participant %s: %w", p.ID, err)
	}
	return nil
}

// AddResponses stores rs in one transaction. A repeated (participant, item)
// pair replaces the earlier answer.
func (s *SQLiteStore) AddResponses(rs []*services.Response) error {
	ctx := contextBg()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin responses tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	itemScale := map[string]string{}
	for _, r := range rs {
		if r == nil {
			continue
		}
		scaleID, ok := itemScale[r.ItemID]
		if !ok {
			row := tx.QueryRowContext(ctx, `SELECT scale_id FROM items WHERE id = ?`, r.ItemID)
			if err := row.Scan(&scaleID); err != nil {
				return fmt.Errorf("resolve scale for item %s: %w", r.ItemID, err)
			}
			itemScale[r.ItemID] = scaleID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO responses (participant_id, item_id, scale_id, raw_value, score_value, submitted_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ParticipantID, r.ItemID, scaleID, r.RawValue, r.ScoreValue, r.SubmittedAt); err != nil {
			return fmt.Errorf("insert response: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit responses: %w", err)
	}
	s.logger.Debug("responses stored", zap.Int("count", len(rs)))
	return nil
}

func (s *SQLiteStore) ListResponsesByScale(scaleID string) ([]*services.Response, error) {
	if strings.TrimSpace(scaleID) == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(contextBg(),
		`SELECT participant_id, item_id, raw_value, score_value, submitted_at FROM responses
		 WHERE scale_id = ? ORDER BY participant_id, item_id`, scaleID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()
	out := []*services.Response{}
	for rows.Next() {
		var r services.Response
		if err := rows.Scan(&r.ParticipantID, &r.ItemID, &r.RawValue, &r.ScoreValue, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertRatings(rs []*services.Rating) error {
	ctx := contextBg()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ratings tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, r := range rs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO judge_ratings (scale_id, item_id, judge, score, submitted_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (scale_id, item_id, judge) DO UPDATE SET score = excluded.score, submitted_at = excluded.submitted_at`,
			r.ScaleID, r.ItemID, r.Judge, r.Score, r.SubmittedAt); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ratings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRatings(scaleID string) ([]*services.Rating, error) {
	rows, err := s.db.QueryContext(contextBg(),
		`SELECT scale_id, item_id, judge, score, submitted_at FROM judge_ratings WHERE scale_id = ? ORDER BY judge, item_id`, scaleID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()
	out := []*services.Rating{}
	for rows.Next() {
		var r services.Rating
		if err := rows.Scan(&r.ScaleID, &r.ItemID, &r.Judge, &r.Score, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddTenant(t *services.Tenant) error {
	if _, err := s.db.ExecContext(contextBg(), `INSERT INTO tenants (id, name) VALUES (?, ?)`, t.ID, t.Name); err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddUser(u *services.User) error {
	_, err := s.db.ExecContext(contextBg(),
		`INSERT INTO users (id, email, pass_hash, tenant_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PassHash, u.TenantID, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindUserByEmail(email string) (*services.User, error) {
	row := s.db.QueryRowContext(contextBg(),
		`SELECT id, email, pass_hash, tenant_id, created_at FROM users WHERE email = ?`, email)
	var u services.User
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.TenantID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
