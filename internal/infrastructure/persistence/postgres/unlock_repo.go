package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════
// UNLOCK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════

// UnlockRepository implements achievement.UnlockRepository for PostgreSQL.
// Saves replace the user's whole record set in one transaction, matching
// the full-snapshot persistence contract of the domain store.
type UnlockRepository struct {
	conn *Connection
}

// NewUnlockRepository creates a new UnlockRepository.
func NewUnlockRepository(conn *Connection) *UnlockRepository {
	return &UnlockRepository{conn: conn}
}

// LoadUnlockRecords returns every stored record for the user. An unknown
// user yields an empty slice.
func (r *UnlockRepository) LoadUnlockRecords(ctx context.Context, userID string) ([]achievement.UnlockRecord, error) {
	query := `
		SELECT achievement_id, unlocked, unlocked_at
		FROM achievement_unlocks
		WHERE user_id = $1
		ORDER BY achievement_id
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlock records: %w", err)
	}
	defer rows.Close()

	records := make([]achievement.UnlockRecord, 0)
	for rows.Next() {
		var rec achievement.UnlockRecord

		if err := rows.Scan(&rec.ID, &rec.Unlocked, &rec.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unlock record: %w", err)
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// SaveUnlockRecords replaces the user's stored unlock state.
func (r *UnlockRepository) SaveUnlockRecords(ctx context.Context, userID string, records []achievement.UnlockRecord) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM achievement_unlocks WHERE user_id = $1`, userID,
		); err != nil {
			return fmt.Errorf("failed to clear unlock records: %w", err)
		}

		query := `
			INSERT INTO achievement_unlocks (user_id, achievement_id, unlocked, unlocked_at)
			VALUES ($1, $2, $3, $4)
		`

		for _, rec := range records {
			if _, err := tx.Exec(ctx, query, userID, rec.ID, rec.Unlocked, rec.UnlockedAt); err != nil {
				return fmt.Errorf("failed to insert unlock record %s: %w", rec.ID, err)
			}
		}

		return nil
	})
}

// DeleteUnlockRecords removes all records for a user.
func (r *UnlockRepository) DeleteUnlockRecords(ctx context.Context, userID string) error {
	_, err := r.conn.Exec(ctx,
		`DELETE FROM achievement_unlocks WHERE user_id = $1`, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete unlock records: %w", err)
	}

	return nil
}
