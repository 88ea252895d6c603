package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ravi-menon/dept-attendance-api/internal/repository"
	"github.com/ravi-menon/dept-attendance-api/pkg/jobs"
)

const jobTypeInvalidateDepartment = "invalidate_department"

// ReportCache caches aggregation outputs in Redis and invalidates them
// asynchronously through a small worker queue, so attendance writes never
// wait on cache cleanup.
type ReportCache struct {
	repo    *repository.CacheRepository
	queue   *jobs.Queue
	ttl     time.Duration
	enabled bool
	metrics *MetricsService
	logger  *zap.Logger
}

// ReportCacheConfig tunes the cache.
type ReportCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Workers int
}

// NewReportCache constructs the cache and its invalidation queue.
func NewReportCache(repo *repository.CacheRepository, cfg ReportCacheConfig, logger *zap.Logger) *ReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := &ReportCache{repo: repo, ttl: cfg.TTL, enabled: cfg.Enabled, logger: logger}
	cache.queue = jobs.NewQueue("report-cache", cache.handleJob, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return cache
}

// SetMetrics attaches cache hit/miss instrumentation. Optional.
func (c *ReportCache) SetMetrics(metrics *MetricsService) {
	c.metrics = metrics
}

// Start launches the invalidation workers.
func (c *ReportCache) Start(ctx context.Context) {
	c.queue.Start(ctx)
}

// Stop drains the invalidation workers.
func (c *ReportCache) Stop() {
	c.queue.Stop()
}

// Get loads a cached payload. Disabled caches always miss.
func (c *ReportCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled || c.repo == nil {
		return false
	}
	if err := c.repo.Get(ctx, key, dest); err != nil {
		c.metrics.RecordCacheLookup(false)
		return false
	}
	c.metrics.RecordCacheLookup(true)
	return true
}

// Set stores a payload with the configured TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value interface{}) {
	if !c.enabled || c.repo == nil {
		return
	}
	if err := c.repo.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("report cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateDepartment schedules removal of every cached report and summary
// touching the department. Errors are logged, not surfaced: a stale cache
// entry expires by TTL anyway.
func (c *ReportCache) InvalidateDepartment(department string) {
	if !c.enabled || c.repo == nil {
		return
	}
	err := c.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeInvalidateDepartment,
		Payload: department,
	})
	if err != nil {
		c.logger.Warn("failed to enqueue cache invalidation", zap.String("department", department), zap.Error(err))
	}
}

func (c *ReportCache) handleJob(ctx context.Context, job jobs.Job) error {
	department, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	if err := c.repo.DeleteByPattern(ctx, fmt.Sprintf("report:dept:%s:*", department)); err != nil {
		return err
	}
	return c.repo.DeleteByPattern(ctx, "summary:*")
}
