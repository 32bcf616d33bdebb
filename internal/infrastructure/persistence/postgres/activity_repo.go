package postgres

import (
	"context"
	"fmt"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════
// ACTIVITY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════

// ActivityRepository implements activity.Repository for PostgreSQL.
type ActivityRepository struct {
	conn *Connection
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(conn *Connection) *ActivityRepository {
	return &ActivityRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────
// Usage logs
// ─────────────────────────────────────────────────────────────────────────

// AddUsageLog stores a usage log entry.
func (r *ActivityRepository) AddUsageLog(ctx context.Context, log activity.UsageLog) error {
	query := `
		INSERT INTO usage_logs (id, user_id, kind, log_date, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		log.ID,
		log.UserID,
		string(log.Kind),
		log.Date,
		log.Amount,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}

	return nil
}

// UsageLogs returns the user's logs of the given kind, oldest first.
func (r *ActivityRepository) UsageLogs(ctx context.Context, userID string, kind activity.UsageKind) ([]activity.UsageLog, error) {
	query := `
		SELECT id, user_id, kind, log_date, amount, created_at
		FROM usage_logs
		WHERE user_id = $1 AND kind = $2
		ORDER BY log_date, created_at
	`

	rows, err := r.conn.Query(ctx, query, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage logs: %w", err)
	}
	defer rows.Close()

	logs := make([]activity.UsageLog, 0)
	for rows.Next() {
		var log activity.UsageLog
		var kindStr string

		if err := rows.Scan(&log.ID, &log.UserID, &kindStr, &log.Date, &log.Amount, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage log: %w", err)
		}
		log.Kind = activity.UsageKind(kindStr)

		logs = append(logs, log)
	}

	return logs, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────
// Tried tips
// ─────────────────────────────────────────────────────────────────────────

// MarkTipTried records that the user tried a tip. Re-marking is a no-op.
func (r *ActivityRepository) MarkTipTried(ctx context.Context, userID, tipID string) error {
	query := `
		INSERT INTO tried_tips (user_id, tip_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, tip_id) DO NOTHING
	`

	_, err := r.conn.Exec(ctx, query, userID, tipID)
	if err != nil {
		return fmt.Errorf("failed to mark tip tried: %w", err)
	}

	return nil
}

// TriedTipIDs returns the ids of tips the user has tried.
func (r *ActivityRepository) TriedTipIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT tip_id
		FROM tried_tips
		WHERE user_id = $1
		ORDER BY tried_at
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tried tips: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tip id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────
// Goals
// ─────────────────────────────────────────────────────────────────────────

// SaveGoals stores the user's custom daily targets, overwriting existing.
func (r *ActivityRepository) SaveGoals(ctx context.Context, userID string, goals activity.Goals) error {
	query := `
		INSERT INTO user_goals (user_id, water_goal, energy_goal, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET water_goal = EXCLUDED.water_goal,
		    energy_goal = EXCLUDED.energy_goal,
		    updated_at = NOW()
	`

	_, err := r.conn.Exec(ctx, query, userID, goals.Water, goals.Energy)
	if err != nil {
		return fmt.Errorf("failed to save goals: %w", err)
	}

	return nil
}

// Goals returns the user's targets; the bool reports whether custom
// settings were ever saved.
func (r *ActivityRepository) Goals(ctx context.Context, userID string) (activity.Goals, bool, error) {
	query := `
		SELECT water_goal, energy_goal
		FROM user_goals
		WHERE user_id = $1
	`

	var goals activity.Goals
	err := r.conn.QueryRow(ctx, query, userID).Scan(&goals.Water, &goals.Energy)
	if err != nil {
		if IsNoRows(err) {
			return activity.DefaultGoals(), false, nil
		}
		return activity.Goals{}, false, fmt.Errorf("failed to query goals: %w", err)
	}

	return goals, true, nil
}

// ─────────────────────────────────────────────────────────────────────────
// Visited pages
// ─────────────────────────────────────────────────────────────────────────

// MarkPageVisited records that the user opened the given page.
func (r *ActivityRepository) MarkPageVisited(ctx context.Context, userID, page string) error {
	query := `
		INSERT INTO visited_pages (user_id, page)
		VALUES ($1, $2)
		ON CONFLICT (user_id, page) DO NOTHING
	`

	_, err := r.conn.Exec(ctx, query, userID, page)
	if err != nil {
		return fmt.Errorf("failed to mark page visited: %w", err)
	}

	return nil
}

// VisitedPages returns the set of pages the user has opened.
func (r *ActivityRepository) VisitedPages(ctx context.Context, userID string) (map[string]bool, error) {
	query := `
		SELECT page
		FROM visited_pages
		WHERE user_id = $1
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visited pages: %w", err)
	}
	defer rows.Close()

	pages := make(map[string]bool)
	for rows.Next() {
		var page string
		if err := rows.Scan(&page); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages[page] = true
	}

	return pages, rows.Err()
}
