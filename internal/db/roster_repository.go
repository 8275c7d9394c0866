package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/beastarena/internal/game/roster"
)

// RosterRepository stores player rosters in roster_units.
type RosterRepository struct {
	db *pgxpool.Pool
}

// NewRosterRepository creates a new RosterRepository.
func NewRosterRepository(db *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{db: db}
}

// Load returns the roster of a player ordered by slot. An unknown player has an empty roster.
func (r *RosterRepository) Load(ctx context.Context, playerID string) ([]roster.Entry, error) {
	query := `
		SELECT base_id, star, row, col, equips
		FROM roster_units
		WHERE player_id = $1
		ORDER BY slot
	`

	rows, err := r.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying roster for player %q: %w", playerID, err)
	}
	defer rows.Close()

	result := make([]roster.Entry, 0, 8)
	for rows.Next() {
		var (
			e        roster.Entry
			star     int16
			row, col int16
		)
		if err := rows.Scan(&e.BaseID, &star, &row, &col, &e.Equips); err != nil {
			return nil, fmt.Errorf("scanning roster row: %w", err)
		}
		e.Star, e.Row, e.Col = int(star), int(row), int(col)
		if len(e.Equips) == 0 {
			e.Equips = nil
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roster rows: %w", err)
	}
	return result, nil
}

// Save replaces the roster of a player. Entries are normalized first.
func (r *RosterRepository) Save(ctx context.Context, playerID string, entries []roster.Entry) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return r.SaveTx(ctx, tx, playerID, entries)
	})
	if err != nil {
		return err
	}
	slog.Debug("roster saved", "player", playerID, "units", len(entries))
	return nil
}

// SaveTx replaces the roster of a player within a transaction.
func (r *RosterRepository) SaveTx(ctx context.Context, tx pgx.Tx, playerID string, entries []roster.Entry) error {
	if _, err := tx.Exec(ctx, `DELETE FROM roster_units WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("deleting old roster for player %q: %w", playerID, err)
	}
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entries))
	for i, e := range entries {
		e = roster.Normalize(e)
		equips := e.Equips
		if equips == nil {
			equips = []string{}
		}
		rows = append(rows, []any{playerID, int32(i), e.BaseID, int16(e.Star), int16(e.Row), int16(e.Col), equips})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"roster_units"},
		[]string{"player_id", "slot", "base_id", "star", "row", "col", "equips"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copying roster for player %q: %w", playerID, err)
	}
	return nil
}
