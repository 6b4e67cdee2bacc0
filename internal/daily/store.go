package daily

import (
	"context"
	"database/sql"
)

// Result is one player's solve of a daily word. Owner is the player's
// session key and must never leave the server.
type Result struct {
	Owner    string `json:"-"`
	Date     string `json:"date"`
	Length   int    `json:"length"`
	Word     string `json:"-"`
	Attempts int    `json:"attempts"`
	Seconds  int    `json:"seconds"`
}

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether owner has a result for date and length.
func (s *Store) AlreadyPlayed(ctx context.Context, owner, date string, length int) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE owner=? AND date=? AND length=?`,
		owner, date, length,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records r. A second result for the same owner, date and
// length is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(owner, date, length, word, attempts, seconds)
         VALUES(?,?,?,?,?,?)`, r.Owner, r.Date, r.Length, r.Word, r.Attempts, r.Seconds,
	)
	return err
}

// Leaderboard lists the best results for date and length: fastest first,
// then fewest attempts, then most recent.
func (s *Store) Leaderboard(ctx context.Context, date string, length, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner, date, length, attempts, seconds
         FROM daily_results
         WHERE date=? AND length=?
         ORDER BY seconds ASC, attempts ASC, created_at DESC
         LIMIT ?`, date, length, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Owner, &r.Date, &r.Length, &r.Attempts, &r.Seconds); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
