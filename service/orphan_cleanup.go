package service

import (
	"context"
	"fmt"
	"time"

	"bitwise74/formdrop-api/model"
	"bitwise74/formdrop-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrphanCleanup periodically removes ownerless files that no submission
// points at. They are left behind when a submission fails after its
// attachments were stored, or when a form and its submissions get deleted.
// Files younger than grace are skipped so in-flight submissions are safe.
func OrphanCleanup(t, grace time.Duration, db *gorm.DB, blobs storage.Blobs) {
	if t <= 0 {
		zap.L().Debug("Orphan cleanup disabled")
		return
	}

	ticker := time.NewTicker(t)

	zap.L().Debug("Orphan cleanup attached", zap.Duration("tick_every", t), zap.Duration("grace", grace))

	go func() {
		for range ticker.C {
			n, err := SweepOrphans(context.Background(), db, blobs, time.Now().Add(-grace))
			if err != nil {
				zap.L().Error("Orphan cleanup failed", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Info("Orphan cleanup finished", zap.Int("removed", n))
			}
		}
	}()
}

// SweepOrphans deletes anonymous, unreferenced files created before cutoff
// and returns how many were removed. Files that lost their owner through an
// account deletion are never touched.
func SweepOrphans(ctx context.Context, db *gorm.DB, blobs storage.Blobs, cutoff time.Time) (int, error) {
	var candidates []model.File

	err := db.WithContext(ctx).
		Where("anonymous = ? AND owner_id IS NULL AND created_at < ?", true, cutoff).
		Order("created_at asc").
		Find(&candidates).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to query db for ownerless files, %w", err)
	}

	if len(candidates) == 0 {
		return 0, nil
	}

	// A submission is always written after its attachments, so only
	// submissions newer than the oldest candidate can reference one
	var refLists []model.FileRefs

	err = db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("created_at >= ?", candidates[0].CreatedAt).
		Pluck("files", &refLists).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to query db for submission files, %w", err)
	}

	referenced := make(map[uint]struct{})
	for _, refs := range refLists {
		for _, id := range refs.IDs() {
			referenced[id] = struct{}{}
		}
	}

	removed := 0

	for _, file := range candidates {
		if _, ok := referenced[file.ID]; ok {
			continue
		}

		// Re-check ownership in the delete itself, the row may have changed
		res := db.WithContext(ctx).
			Where("id = ? AND owner_id IS NULL", file.ID).
			Delete(&model.File{})
		if res.Error != nil {
			zap.L().Error("Failed to delete orphaned file record", zap.Uint("file_id", file.ID), zap.Error(res.Error))
			continue
		}

		if res.RowsAffected == 0 {
			continue
		}

		if err := blobs.Delete(ctx, file.StoredName); err != nil {
			zap.L().Warn("Failed to delete orphaned blob", zap.String("stored_name", file.StoredName), zap.Error(err))
		}

		removed++
	}

	return removed, nil
}
