package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/lock"
	"royalfootwear/internal/logger"
	"royalfootwear/internal/metrics"
)

// maxWriteAttempts bounds how often one aggregate write is retried after a version conflict.
const maxWriteAttempts = 3

// errVersionConflict means the aggregate row changed between load and write.
var errVersionConflict = errors.New("aggregate version conflict")

// guard serializes read-modify-write cycles on one user's aggregate. The
// per-key lock is the primary guard; the version check catches writers that
// bypass it, such as two nodes each running an in-memory locker.
type guard struct {
	locker  lock.Locker
	opts    lock.Options
	metrics *metrics.Metrics
}

func newGuard(locker lock.Locker, m *metrics.Metrics) guard {
	return guard{locker: locker, opts: lock.DefaultOptions(), metrics: m}
}

// run holds key while attempt executes, retrying attempt on version conflicts.
// Failures that are not AppErrors surface as PERSISTENCE_FAILURE.
func (g guard) run(ctx context.Context, key, aggregate string, attempt func() error) error {
	start := time.Now()
	err := lock.WithLock(ctx, g.locker, key, g.opts, func() error {
		g.metrics.ObserveLockWait(time.Since(start))

		var err error
		for i := 1; i <= maxWriteAttempts; i++ {
			err = attempt()
			if !errors.Is(err, errVersionConflict) {
				return err
			}
			g.metrics.RecordWriteConflict(aggregate)
			logger.For(aggregate).Warnw("version conflict", "key", key, "attempt", i)
		}
		return err
	})
	return asPersistenceError(err)
}

// asPersistenceError passes AppErrors through and wraps everything else.
func asPersistenceError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrPersistence, err)
}

// bumpVersion advances the version of the aggregate row identified by id,
// failing with errVersionConflict if the stored version is no longer expected.
func bumpVersion(tx *gorm.DB, model any, id string, expected int) error {
	res := tx.Model(model).
		Where("id = ? AND version = ?", id, expected).
		Update("version", expected+1)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errVersionConflict
	}
	return nil
}

// createRoot inserts a new aggregate root. A unique violation means another
// writer created the root first and is reported as a version conflict so the
// cycle reloads it; any other failure passes through.
func createRoot(tx *gorm.DB, root any) error {
	err := tx.Create(root).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errVersionConflict
	}
	return err
}
