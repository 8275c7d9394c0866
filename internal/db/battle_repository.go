package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/beastarena/internal/game/battle"
	"github.com/udisondev/beastarena/internal/game/combat"
)

// BattleRecord is one stored battle outcome.
type BattleRecord struct {
	ID        int64
	PlayerID  string
	Outcome   battle.Outcome
	CreatedAt time.Time
}

// BattleRepository stores battle outcomes and their drops.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a new BattleRepository.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// SaveOutcome inserts an outcome with its drops and returns the battle id.
func (r *BattleRepository) SaveOutcome(ctx context.Context, playerID string, out battle.Outcome) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO battles (player_id, winner, rounds, actions, left_survivors, right_survivors, bonus_gold)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			playerID, string(out.Winner), out.Rounds, out.Actions,
			out.LeftSurvivors, out.RightSurvivors, out.BonusGold,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("inserting battle for player %q: %w", playerID, err)
		}
		if len(out.Drops) == 0 {
			return nil
		}

		rows := make([][]any, 0, len(out.Drops))
		for _, d := range out.Drops {
			rows = append(rows, []any{id, d.ItemID, int32(d.Count), d.Source})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"battle_drops"},
			[]string{"battle_id", "item_id", "count", "source"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copying drops of battle %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("battle saved", "player", playerID, "battle", id, "winner", string(out.Winner), "drops", len(out.Drops))
	return id, nil
}

// RecentOutcomes returns up to limit outcomes of a player, newest first.
func (r *BattleRepository) RecentOutcomes(ctx context.Context, playerID string, limit int) ([]BattleRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, winner, rounds, actions, left_survivors, right_survivors, bonus_gold, created_at
		FROM battles
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying battles for player %q: %w", playerID, err)
	}
	defer rows.Close()

	var records []BattleRecord
	index := make(map[int64]int)
	for rows.Next() {
		rec := BattleRecord{PlayerID: playerID}
		var winner string
		if err := rows.Scan(&rec.ID, &winner, &rec.Outcome.Rounds, &rec.Outcome.Actions,
			&rec.Outcome.LeftSurvivors, &rec.Outcome.RightSurvivors, &rec.Outcome.BonusGold, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning battle row: %w", err)
		}
		rec.Outcome.Winner = battle.Winner(winner)
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle rows: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	if err := r.loadDrops(ctx, ids, func(id int64, d combat.DropResult) {
		i := index[id]
		records[i].Outcome.Drops = append(records[i].Outcome.Drops, d)
	}); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BattleRepository) loadDrops(ctx context.Context, ids []int64, add func(int64, combat.DropResult)) error {
	rows, err := r.db.Query(ctx, `
		SELECT battle_id, item_id, count, source
		FROM battle_drops
		WHERE battle_id = ANY($1)
		ORDER BY battle_id, item_id`, ids)
	if err != nil {
		return fmt.Errorf("querying battle drops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int64
			d  combat.DropResult
		)
		if err := rows.Scan(&id, &d.ItemID, &d.Count, &d.Source); err != nil {
			return fmt.Errorf("scanning drop row: %w", err)
		}
		add(id, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating drop rows: %w", err)
	}
	return nil
}
