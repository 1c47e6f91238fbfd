package repository

import (
	"context"
	"time"

	"github.com/eslsoft/vocengage/internal/entity"
)

// ListItemProgressQuery holds parameters for listing a user's item progress.
type ListItemProgressQuery struct {
	Pagination
	FilterOrder

	UserID int64
}

// ItemProgressRepository persists spaced-repetition records keyed by (user, language, item).
type ItemProgressRepository interface {
	// Get returns entity.ErrItemProgressNotFound when the user never attempted the item.
	Get(ctx context.Context, userID int64, language entity.Language, itemID string) (*entity.ItemProgress, error)
	// Save inserts records with a zero ID and updates the rest.
	Save(ctx context.Context, progress *entity.ItemProgress) (*entity.ItemProgress, error)
	List(ctx context.Context, query *ListItemProgressQuery) ([]entity.ItemProgress, int64, error)
	// ListDue returns records due at now, earliest due first.
	ListDue(ctx context.Context, userID int64, language entity.Language, now time.Time, limit int) ([]entity.ItemProgress, error)
}
