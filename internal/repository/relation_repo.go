package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recipebox/internal/domain"
)

var (
	ErrAlreadyExists = errors.New("relation already exists")
	ErrNotFound      = errors.New("relation not found")
)

// RelationRepository is the generic contract for unique-pair relations:
// favorites, shopping-cart entries and subscriptions. Add and Remove
// are deterministic on repeat: a second Add reports ErrAlreadyExists, a
// Remove of a missing pair reports ErrNotFound.
type RelationRepository[T any] interface {
	Add(ctx context.Context, ownerID, targetID int64) (*T, error)
	Remove(ctx context.Context, ownerID, targetID int64) error
	Exists(ctx context.Context, ownerID, targetID int64) (bool, error)
	// TargetIDSet returns every target the owner is related to, for
	// batch-annotating list responses in one query.
	TargetIDSet(ctx context.Context, ownerID int64) (map[int64]struct{}, error)
}

type relationRepository[T any] struct {
	db        *gorm.DB
	ownerCol  string
	targetCol string
	build     func(ownerID, targetID int64) *T
}

// Add inserts the pair. The existence check gives a clean error on the
// common path; the composite unique index catches the race between
// check and insert, and the duplicate-key error maps to the same
// ErrAlreadyExists.
func (r *relationRepository[T]) Add(ctx context.Context, ownerID, targetID int64) (*T, error) {
	exists, err := r.Exists(ctx, ownerID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	row := r.build(ownerID, targetID)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return row, nil
}

func (r *relationRepository[T]) Remove(ctx context.Context, ownerID, targetID int64) error {
	result := r.db.WithContext(ctx).
		Where(r.ownerCol+" = ? AND "+r.targetCol+" = ?", ownerID, targetID).
		Delete(new(T))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *relationRepository[T]) Exists(ctx context.Context, ownerID, targetID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where(r.ownerCol+" = ? AND "+r.targetCol+" = ?", ownerID, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *relationRepository[T]) TargetIDSet(ctx context.Context, ownerID int64) (map[int64]struct{}, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where(r.ownerCol+" = ?", ownerID).
		Pluck(r.targetCol, &ids).Error
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func NewFavoriteRepository(db *gorm.DB) RelationRepository[domain.Favorite] {
	return &relationRepository[domain.Favorite]{
		db:        db,
		ownerCol:  "user_id",
		targetCol: "recipe_id",
		build: func(ownerID, targetID int64) *domain.Favorite {
			return &domain.Favorite{UserID: ownerID, RecipeID: targetID}
		},
	}
}

func NewShoppingCartRepository(db *gorm.DB) RelationRepository[domain.ShoppingCartEntry] {
	return &relationRepository[domain.ShoppingCartEntry]{
		db:        db,
		ownerCol:  "user_id",
		targetCol: "recipe_id",
		build: func(ownerID, targetID int64) *domain.ShoppingCartEntry {
			return &domain.ShoppingCartEntry{UserID: ownerID, RecipeID: targetID}
		},
	}
}

func NewSubscriptionRepository(db *gorm.DB) RelationRepository[domain.Subscription] {
	return &relationRepository[domain.Subscription]{
		db:        db,
		ownerCol:  "subscriber_id",
		targetCol: "author_id",
		build: func(ownerID, targetID int64) *domain.Subscription {
			return &domain.Subscription{SubscriberID: ownerID, AuthorID: targetID}
		},
	}
}
