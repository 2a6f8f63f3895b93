package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps sessions in the session_entries table, one row per key,
// scoped by profile name so several operators can share a database.
type PGStore struct {
	pool       *pgxpool.Pool
	profile    string
	passphrase string
}

func NewPGStore(pool *pgxpool.Pool, profile, passphrase string) *PGStore {
	return &PGStore{pool: pool, profile: profile, passphrase: passphrase}
}

func (s *PGStore) Load(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM session_entries WHERE profile = $1`, s.profile)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	defer rows.Close()

	stored := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning session entry: %w", err)
		}
		stored[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session entries: %w", err)
	}
	return unseal(s.passphrase, stored)
}

// Save replaces the profile's entries in one transaction.
func (s *PGStore) Save(ctx context.Context, entries map[string]string) error {
	sealed, err := seal(s.passphrase, entries)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM session_entries WHERE profile = $1`, s.profile); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		for k, v := range sealed {
			if _, err := tx.Exec(ctx,
				`INSERT INTO session_entries (profile, key, value, updated_at)
				 VALUES ($1, $2, $3, now())`,
				s.profile, k, v); err != nil {
				return fmt.Errorf("saving session entry %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *PGStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM session_entries WHERE profile = $1`, s.profile)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// PoolStats reports connection counts for the metrics collector.
func (s *PGStore) PoolStats() (total, idle, acquired int32) {
	st := s.pool.Stat()
	return st.TotalConns(), st.IdleConns(), st.AcquiredConns()
}
