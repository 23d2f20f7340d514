// Package repo implements the storage persistence layer for the widget
// runtime, backed by GORM. This file provides repository functions for the
// StorageEntry model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no namespacing, JSON handling, or
// eviction logic here; that lives in the store layer.
//
// Error semantics:
//   - GetEntry reports a missing row via its ok return, not an error.
//   - On DB errors (connectivity, constraint violations), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-chat-widget/internal/domain"
)

// GetEntry fetches the value stored under (scope, key). The second return is
// false when no row exists; err is reserved for real database failures.
func GetEntry(ctx context.Context, db *gorm.DB, scope, key string) (string, bool, error) {
	var e domain.StorageEntry
	err := db.WithContext(ctx).
		Where("scope = ? AND key = ?", scope, key).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

// PutEntry inserts or overwrites the value stored under (scope, key).
func PutEntry(ctx context.Context, db *gorm.DB, scope, key, value string) error {
	e := domain.StorageEntry{
		Scope:     scope,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
}

// DeleteEntry removes the row under (scope, key). Deleting a missing row is
// not an error.
func DeleteEntry(ctx context.Context, db *gorm.DB, scope, key string) error {
	return db.WithContext(ctx).
		Where("scope = ? AND key = ?", scope, key).
		Delete(&domain.StorageEntry{}).Error
}
