package achievement

import (
	"context"
)

// UnlockRepository persists per-user unlock records. Implementations live
// in the infrastructure layer; persistence is best-effort, last write wins.
type UnlockRepository interface {
	// LoadUnlockRecords returns the stored unlock records for a user.
	// An unknown user yields an empty slice, not an error.
	LoadUnlockRecords(ctx context.Context, userID string) ([]UnlockRecord, error)

	// SaveUnlockRecords stores the full unlock state for a user,
	// replacing whatever was stored before.
	SaveUnlockRecords(ctx context.Context, userID string, records []UnlockRecord) error

	// DeleteUnlockRecords removes all records for a user (account wipe).
	DeleteUnlockRecords(ctx context.Context, userID string) error
}
