package visitor

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// RetentionMonths is how long visit records are kept.
const RetentionMonths = 12

// Visit is one privacy-conscious page view.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Path      string    `json:"path"`
	Country   string    `json:"country,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Count is a labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Stats backs the admin dashboard.
type Stats struct {
	TotalVisitors    int64   `json:"total_visitors"`
	UniqueVisitors   int64   `json:"unique_visitors"`
	VisitorsToday    int64   `json:"visitors_today"`
	VisitorsThisWeek int64   `json:"visitors_this_week"`
	TopBrowsers      []Count `json:"top_browsers"`
	TopOS            []Count `json:"top_os"`
	RecentVisitors   []Visit `json:"recent_visitors"`
}

// Store persists visits in sqlite. Raw addresses are never written: they are
// hashed with a per-process salt first.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// Open opens (or creates) the sqlite database at path and migrates it.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open visitor db: %w", err)
	}
	// sqlite serializes writers; a single connection also keeps :memory: alive.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, salt: randomHex(32), now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT,
		browser TEXT,
		os TEXT,
		path TEXT,
		country TEXT,
		timestamp TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create visitors table: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS visitors_timestamp ON visitors (timestamp)`)
	if err != nil {
		return fmt.Errorf("create visitors index: %w", err)
	}
	return nil
}

// HashIP hashes an address with the store's salt. The same address maps to
// the same hash for the life of the process.
func (s *Store) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Record stores a visit from ip. Browser and OS are derived from the agent.
func (s *Store) Record(ctx context.Context, ip, userAgent, path, country string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, browser, os, path, country, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.HashIP(ip), userAgent, DetectBrowser(userAgent), DetectOS(userAgent), path, country,
		s.stamp(s.now()))
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Cleanup deletes visits older than RetentionMonths and reports how many went.
func (s *Store) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`,
		s.stamp(s.now().AddDate(0, -RetentionMonths, 0)))
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	return res.RowsAffected()
}

// Recent returns the newest visits first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, browser, os, path, COALESCE(country, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Browser, &v.OS, &v.Path, &v.Country, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp, _ = time.Parse(stampLayout, ts)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Stats aggregates the dashboard numbers.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{s.stamp(midnight)}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{s.stamp(now.Add(-7 * 24 * time.Hour))}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("visitor stats: %w", err)
		}
	}

	var err error
	if stats.TopBrowsers, err = s.top(ctx, "browser"); err != nil {
		return nil, err
	}
	if stats.TopOS, err = s.top(ctx, "os"); err != nil {
		return nil, err
	}
	if stats.RecentVisitors, err = s.Recent(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) top(ctx context.Context, column string) ([]Count, error) {
	// column is one of two constants, never caller input.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+column+`, COUNT(*) AS n FROM visitors
		GROUP BY `+column+`
		ORDER BY n DESC, `+column+` ASC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", column, err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("scan top %s: %w", column, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// stampLayout sorts lexically in time order, so range queries can compare
// the stored text directly.
const stampLayout = "2006-01-02 15:04:05"

func (s *Store) stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("visitor: read random salt: %v", err))
	}
	return hex.EncodeToString(b)
}
