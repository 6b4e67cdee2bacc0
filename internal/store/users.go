// internal/store/users.go
//
// Account persistence in the users table.
// Passwords arrive already hashed; this layer never sees plaintext.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrUsernameTaken is returned by Users.Create for a duplicate username.
var ErrUsernameTaken = errors.New("username taken")

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Streak       int       `json:"streak"`
}

// Users reads and writes accounts.
type Users struct{ db *sql.DB }

func NewUsers(db *sql.DB) *Users { return &Users{db: db} }

// Create inserts a user. Username uniqueness is case-insensitive.
func (u *Users) Create(ctx context.Context, id, username, passwordHash string) (*User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	_, err := u.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, username, passwordHash, now.Format(time.RFC3339))
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

const userColumns = `id, username, password_hash, created_at, games_played, wins, streak`

// ByUsername loads a user, or ErrNotFound.
func (u *Users) ByUsername(ctx context.Context, username string) (*User, error) {
	row := u.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username)=lower(?)`, strings.TrimSpace(username))
	return scanUser(row)
}

// ByID loads a user, or ErrNotFound.
func (u *Users) ByID(ctx context.Context, id string) (*User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var usr User
	var created string
	err := row.Scan(&usr.ID, &usr.Username, &usr.PasswordHash, &created, &usr.GamesPlayed, &usr.Wins, &usr.Streak)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	usr.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &usr, nil
}

// BumpStats counts one finished game: games played always, wins and streak
// on a win, streak reset on a loss.
func (u *Users) BumpStats(ctx context.Context, id string, won bool) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var gp, wins, streak int
	err = tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, id).
		Scan(&gp, &wins, &streak)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, id); err != nil {
		return err
	}
	return tx.Commit()
}
