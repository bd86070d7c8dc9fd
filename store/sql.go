package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS anagram_users (
	user_id TEXT NOT NULL,
	community_id TEXT NOT NULL,
	points INTEGER NOT NULL DEFAULT 0,
	acumen INTEGER NOT NULL DEFAULT 50,
	last_powerup TEXT,
	PRIMARY KEY (user_id, community_id)
)`

// SQL is a Store on SQLite or Postgres. Queries are written with ? and
// rebound to $n for Postgres.
type SQL struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the table if missing.
func Open(driver, dsn string) (*SQL, error) {
	var db *sql.DB
	var err error
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	s := &SQL{db: db, driver: driver}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	memory := strings.Contains(dsn, ":memory:")
	if !memory {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}
	db, err := sql.Open(DriverSQLite, dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if memory {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create anagram_users: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQL) Get(ctx context.Context, user, community string) (Record, error) {
	var rec Record
	var last sql.NullString
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT points, acumen, last_powerup FROM anagram_users WHERE user_id = ? AND community_id = ?`),
		user, community).Scan(&rec.Points, &rec.Acumen, &last)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	if rec.LastPowerup, err = parseTime(last); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *SQL) Upsert(ctx context.Context, user, community string, points, acumen int) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO anagram_users (user_id, community_id, points, acumen) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, community_id) DO UPDATE SET points = excluded.points, acumen = excluded.acumen`),
		user, community, points, acumen)
	return err
}

func (s *SQL) UpdatePoints(ctx context.Context, user, community string, points int) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO anagram_users (user_id, community_id, points, acumen) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, community_id) DO UPDATE SET points = excluded.points`),
		user, community, points, InitialAcumen)
	return err
}

func (s *SQL) Top(ctx context.Context, community string, n int) ([]LeaderboardRow, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT user_id, points, acumen FROM anagram_users WHERE community_id = ?
		ORDER BY points DESC, user_id ASC LIMIT ?`), community, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LeaderboardRow, 0, n)
	for rows.Next() {
		row := LeaderboardRow{Rank: len(out) + 1}
		if err := rows.Scan(&row.UserID, &row.Points, &row.Acumen); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SQL) LastPowerup(ctx context.Context, user, community string) (*time.Time, error) {
	var last sql.NullString
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT last_powerup FROM anagram_users WHERE user_id = ? AND community_id = ?`),
		user, community).Scan(&last)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return parseTime(last)
}

func (s *SQL) SetLastPowerup(ctx context.Context, user, community string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE anagram_users SET last_powerup = ? WHERE user_id = ? AND community_id = ?`),
		at.Format(time.RFC3339Nano), user, community)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, fmt.Errorf("parse last_powerup %q: %w", s.String, err)
	}
	return &t, nil
}
