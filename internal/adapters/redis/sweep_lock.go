package redis

import (
	"context"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/vkravets/newspulse/pkg/logger"
)

const sweepLockName = "scheduler:sweep:lock"

// SweepLock guards the keyword sweep so that a single instance dispatches
// scrape work per cycle, even with several pods running
type SweepLock struct {
	lockManager *redlock.RedLock
	ttl         time.Duration
}

// NewSweepLock creates new sweep lock
func (c *Client) NewSweepLock(ttl time.Duration) *SweepLock {
	return &SweepLock{
		lockManager: c.lockManager,
		ttl:         ttl,
	}
}

// TryAcquire attempts to take the sweep lock. Returns false when another
// instance currently holds it, which is not an error.
func (l *SweepLock) TryAcquire(ctx context.Context) bool {
	expiry, err := l.lockManager.Lock(ctx, sweepLockName, l.ttl)
	if err != nil || expiry <= 0 {
		logger.Debug("sweep lock held by another instance",
			zap.String("lock", sweepLockName),
		)
		return false
	}

	return true
}

// Release releases the sweep lock
func (l *SweepLock) Release(ctx context.Context) {
	if err := l.lockManager.UnLock(ctx, sweepLockName); err != nil {
		logger.Warn("failed to release sweep lock (may have already expired)",
			zap.String("lock", sweepLockName),
			zap.Error(err),
		)
	}
}
