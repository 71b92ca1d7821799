package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/facturo/backend/internal/domain/metrics"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/infrastructure/cache"
)

const (
	// DefaultSnapshotTTL bounds staleness of cached dashboard snapshots
	DefaultSnapshotTTL = 30 * time.Minute

	// DefaultTopCustomers is the ranking size when not configured
	DefaultTopCustomers = 5

	// maxRevenueBuckets caps how many sub-period queries one analytics
	// request may fan out; wider ranges are rejected as caller error.
	maxRevenueBuckets = 500

	// revenueQueryConcurrency bounds the parallel bucket queries of one
	// analytics request.
	revenueQueryConcurrency = 16
)

var hundred = decimal.NewFromInt(100)

// Options tunes the aggregation engine
type Options struct {
	SnapshotTTL  time.Duration
	TopCustomers int
}

// MetricsService is the aggregation engine: it computes per-tenant dashboard
// snapshots by fanning out independent aggregate queries, fronted by a
// TTL-bounded cache-aside. The cache is a latency optimization only; cache
// failures degrade to recomputation and never fail a request.
type MetricsService struct {
	repo   metrics.Repository
	store  cache.MetricStore
	keys   *cache.KeyBuilder
	logger *zap.Logger
	ttl    time.Duration
	topN   int
	now    func() time.Time
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(repo metrics.Repository, store cache.MetricStore, keys *cache.KeyBuilder, logger *zap.Logger, opts Options) *MetricsService {
	ttl := opts.SnapshotTTL
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	topN := opts.TopCustomers
	if topN <= 0 {
		topN = DefaultTopCustomers
	}
	return &MetricsService{
		repo:   repo,
		store:  store,
		keys:   keys,
		logger: logger,
		ttl:    ttl,
		topN:   topN,
		now:    time.Now,
	}
}

// GetDashboard returns the tenant's dashboard snapshot, served from cache
// when warm. On a miss every sub-metric is computed concurrently; if any
// sub-query fails the whole call fails and nothing is cached.
func (s *MetricsService) GetDashboard(ctx context.Context, tenantID uuid.UUID) (*metrics.DashboardSnapshot, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant id is required")
	}

	key := s.keys.Build(cache.CategoryDashboard, tenantID)

	var cached metrics.DashboardSnapshot
	if s.readCache(ctx, key, &cached) {
		s.logger.Debug("Dashboard snapshot served from cache",
			zap.String("tenant_id", tenantID.String()))
		return &cached, nil
	}

	snapshot, err := s.computeDashboard(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, key, snapshot)
	return snapshot, nil
}

// computeDashboard fans out every sub-metric query concurrently and joins
// them into one snapshot. The first failure cancels the remaining queries.
func (s *MetricsService) computeDashboard(ctx context.Context, tenantID uuid.UUID) (*metrics.DashboardSnapshot, error) {
	now := s.now()
	monthStart := startOfMonth(now)
	prevMonthStart := startOfMonth(monthStart.AddDate(0, 0, -1))
	yearStart := startOfYear(now)

	var (
		monthlyRevenue   decimal.Decimal
		yearlyRevenue    decimal.Decimal
		prevMonthRevenue decimal.Decimal
		pendingInvoices  int64
		overdueInvoices  int64
		totalInvoices    int64
		topCustomers     []metrics.TopCustomer
		invoiceCounts    map[metrics.InvoiceStatus]int64
		monthlyQuotes    int64
		yearlyQuotes     int64
		pendingQuotes    int64
		acceptedQuotes   int64
		quoteCounts      map[metrics.QuoteStatus]int64
		paymentDelays    []int64
		totalCustomers   int64
		newCustomers     int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		monthlyRevenue, err = s.repo.PaidRevenueBetween(gctx, tenantID, monthStart, now)
		return err
	})
	g.Go(func() (err error) {
		yearlyRevenue, err = s.repo.PaidRevenueBetween(gctx, tenantID, yearStart, now)
		return err
	})
	g.Go(func() (err error) {
		prevMonthRevenue, err = s.repo.PaidRevenueBetween(gctx, tenantID, prevMonthStart, monthStart)
		return err
	})
	g.Go(func() (err error) {
		pendingInvoices, err = s.repo.CountInvoicesByStatus(gctx, tenantID, metrics.InvoiceStatusPending)
		return err
	})
	g.Go(func() (err error) {
		overdueInvoices, err = s.repo.CountInvoicesByStatus(gctx, tenantID, metrics.InvoiceStatusLate)
		return err
	})
	g.Go(func() (err error) {
		totalInvoices, err = s.repo.CountInvoices(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		topCustomers, err = s.repo.TopCustomers(gctx, tenantID, s.topN)
		return err
	})
	g.Go(func() (err error) {
		invoiceCounts, err = s.repo.InvoiceStatusCounts(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		monthlyQuotes, err = s.repo.CountQuotesBetween(gctx, tenantID, monthStart, now)
		return err
	})
	g.Go(func() (err error) {
		yearlyQuotes, err = s.repo.CountQuotesBetween(gctx, tenantID, yearStart, now)
		return err
	})
	g.Go(func() (err error) {
		pendingQuotes, err = s.repo.CountQuotesByStatus(gctx, tenantID, metrics.QuoteStatusSent)
		return err
	})
	g.Go(func() (err error) {
		acceptedQuotes, err = s.repo.CountQuotesByStatus(gctx, tenantID, metrics.QuoteStatusAccepted)
		return err
	})
	g.Go(func() (err error) {
		quoteCounts, err = s.repo.QuoteStatusCounts(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		paymentDelays, err = s.repo.PaymentDelays(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		totalCustomers, err = s.repo.CountCustomers(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		newCustomers, err = s.repo.CountCustomersCreatedBetween(gctx, tenantID, monthStart, now)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Dashboard aggregation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return &metrics.DashboardSnapshot{
		MonthlyRevenue:            monthlyRevenue,
		YearlyRevenue:             yearlyRevenue,
		PendingInvoices:           pendingInvoices,
		OverdueInvoices:           overdueInvoices,
		TopCustomers:              metrics.RankTopCustomers(topCustomers, s.topN),
		InvoiceStatusDistribution: metrics.ZeroFilledHistogram(metrics.AllInvoiceStatuses(), invoiceCounts),
		MonthlyQuotes:             monthlyQuotes,
		YearlyQuotes:              yearlyQuotes,
		PendingQuotes:             pendingQuotes,
		AcceptedQuotes:            acceptedQuotes,
		QuoteStatusDistribution:   metrics.ZeroFilledHistogram(metrics.AllQuoteStatuses(), quoteCounts),
		QuoteToInvoiceRatio:       conversionRatio(totalInvoices, acceptedQuotes),
		AveragePaymentDelay:       averageDelay(paymentDelays),
		TotalCustomers:            totalCustomers,
		NewCustomersThisMonth:     newCustomers,
		GrowthRate:                growthRate(prevMonthRevenue, monthlyRevenue),
	}, nil
}

// GetRevenueAnalytics returns a per-period revenue series for the tenant,
// cache-aside keyed by period kind and explicit date bounds.
func (s *MetricsService) GetRevenueAnalytics(ctx context.Context, tenantID uuid.UUID, kind metrics.PeriodKind, startDate, endDate *time.Time) ([]metrics.RevenuePoint, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant id is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("invalid period kind: " + kind.String())
	}

	key := s.keys.Build(cache.CategoryRevenue, tenantID,
		kind.String(), boundDim(startDate), boundDim(endDate))

	var cached []metrics.RevenuePoint
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	start, end := s.resolveRange(kind, startDate, endDate)
	buckets := partitionRange(kind, start, end)
	if len(buckets) > maxRevenueBuckets {
		return nil, shared.NewValidationError(fmt.Sprintf(
			"date range spans %d %s periods, limit is %d", len(buckets), kind, maxRevenueBuckets))
	}

	points := make([]metrics.RevenuePoint, len(buckets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(revenueQueryConcurrency)
	for i, b := range buckets {
		g.Go(func() error {
			revenue, count, err := s.repo.RevenueStatsBetween(gctx, tenantID, b.start, b.end)
			if err != nil {
				return err
			}
			avg := decimal.Zero
			if count > 0 {
				avg = revenue.Div(decimal.NewFromInt(count)).Round(2)
			}
			points[i] = metrics.RevenuePoint{
				Period:           b.label,
				PeriodStart:      b.start,
				PeriodEnd:        b.end,
				Revenue:          revenue,
				InvoiceCount:     count,
				AvgInvoiceAmount: avg,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Revenue analytics failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("period", kind.String()),
			zap.Error(err),
		)
		return nil, err
	}

	// Growth and cumulative revenue depend on bucket order, so they are
	// filled in after the join.
	cumulative := decimal.Zero
	for i := range points {
		cumulative = cumulative.Add(points[i].Revenue)
		points[i].CumulativeRevenue = cumulative
		if i > 0 {
			points[i].GrowthRate = growthRate(points[i-1].Revenue, points[i].Revenue)
		} else {
			points[i].GrowthRate = decimal.Zero
		}
	}

	s.writeCache(ctx, key, points)
	return points, nil
}

// InvalidateTenant removes every cached entry of the tenant across all
// categories. Invalidation is advisory cache hygiene: failures are logged
// and never surfaced, staleness stays bounded by the TTL regardless.
func (s *MetricsService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) int64 {
	if tenantID == uuid.Nil {
		return 0
	}

	deleted, err := s.store.DeleteByPattern(ctx, s.keys.TenantPattern(tenantID))
	if err != nil {
		s.logger.Warn("Cache invalidation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return 0
	}

	s.logger.Info("Tenant cache invalidated",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("deleted", deleted),
	)
	return deleted
}

// HealthCheck verifies the transactional data source is reachable. The cache
// is deliberately not checked: its absence degrades latency, not health.
func (s *MetricsService) HealthCheck(ctx context.Context) metrics.HealthStatus {
	status := metrics.HealthStatusHealthy
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error("Data source health check failed", zap.Error(err))
		status = metrics.HealthStatusUnhealthy
	}
	return metrics.HealthStatus{
		Status:    status,
		Timestamp: s.now().UTC(),
	}
}

// GetRealTime returns the lightweight polling payload derived from the
// dashboard snapshot, sharing its cache entry.
func (s *MetricsService) GetRealTime(ctx context.Context, tenantID uuid.UUID) (*metrics.RealTimeMetrics, error) {
	snapshot, err := s.GetDashboard(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &metrics.RealTimeMetrics{
		Timestamp:       s.now().UTC(),
		TodayRevenue:    snapshot.MonthlyRevenue,
		PendingInvoices: snapshot.PendingInvoices,
		OverdueInvoices: snapshot.OverdueInvoices,
	}, nil
}

// readCache loads and deserializes a cached value into out. Any store or
// decode failure collapses to a miss.
func (s *MetricsService) readCache(ctx context.Context, key string, out any) bool {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Cache read failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("Cache entry undecodable, treating as miss",
			zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// writeCache serializes and stores a freshly computed value. Failures are
// logged and swallowed; the computed value is still returned to the caller.
func (s *MetricsService) writeCache(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Cache serialization failed, skipping write",
			zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Cache write failed, result served uncached",
			zap.String("key", key), zap.Error(err))
	}
}

// resolveRange fills in the default analytics window when the caller omits
// bounds: end defaults to now, start to a kind-dependent lookback.
func (s *MetricsService) resolveRange(kind metrics.PeriodKind, startDate, endDate *time.Time) (time.Time, time.Time) {
	end := s.now()
	if endDate != nil {
		end = *endDate
	}

	if startDate != nil {
		return *startDate, end
	}

	var start time.Time
	switch kind {
	case metrics.PeriodDaily:
		start = end.AddDate(0, 0, -30)
	case metrics.PeriodWeekly:
		start = end.AddDate(0, 0, -12*7)
	case metrics.PeriodMonthly:
		start = end.AddDate(0, -12, 0)
	case metrics.PeriodYearly:
		start = end.AddDate(-5, 0, 0)
	}
	return start, end
}

type revenueBucket struct {
	label string
	start time.Time
	end   time.Time
}

// partitionRange splits [start, end) into contiguous buckets at the given
// granularity. The first and last buckets are clamped to the range.
func partitionRange(kind metrics.PeriodKind, start, end time.Time) []revenueBucket {
	if !end.After(start) {
		return []revenueBucket{}
	}

	var buckets []revenueBucket
	cursor := start
	for cursor.Before(end) {
		// one extra bucket is enough for the caller to reject the range
		if len(buckets) > maxRevenueBuckets {
			return buckets
		}
		next := nextBoundary(kind, cursor)
		if next.After(end) {
			next = end
		}
		buckets = append(buckets, revenueBucket{
			label: bucketLabel(kind, cursor),
			start: cursor,
			end:   next,
		})
		cursor = next
	}
	return buckets
}

// nextBoundary returns the first period boundary strictly after t.
// Weeks start on Monday.
func nextBoundary(kind metrics.PeriodKind, t time.Time) time.Time {
	switch kind {
	case metrics.PeriodDaily:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return day.AddDate(0, 0, 1)
	case metrics.PeriodWeekly:
		return startOfWeek(t).AddDate(0, 0, 7)
	case metrics.PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	case metrics.PeriodYearly:
		return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return t.AddDate(0, 0, 1)
}

func bucketLabel(kind metrics.PeriodKind, start time.Time) string {
	switch kind {
	case metrics.PeriodDaily:
		return start.Format("2006-01-02")
	case metrics.PeriodWeekly:
		return startOfWeek(start).Format("2006-01-02")
	case metrics.PeriodMonthly:
		return start.Format("2006-01")
	case metrics.PeriodYearly:
		return start.Format("2006")
	}
	return start.Format("2006-01-02")
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// boundDim renders an optional date bound as a cache key dimension.
// RFC 3339 keeps keys deterministic across processes and locales.
func boundDim(t *time.Time) string {
	if t == nil {
		return "null"
	}
	return t.UTC().Format(time.RFC3339)
}

// conversionRatio is invoices per accepted quote, 0 when nothing was accepted
func conversionRatio(totalInvoices, acceptedQuotes int64) decimal.Decimal {
	if acceptedQuotes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(totalInvoices).
		Div(decimal.NewFromInt(acceptedQuotes)).
		Round(2)
}

// growthRate is the percent change from previous to current, 0 when the
// previous value is 0 so the result is never infinite.
func growthRate(previous, current decimal.Decimal) decimal.Decimal {
	if previous.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// averageDelay rounds the mean of per-invoice whole-day delays to the
// nearest integer, 0 when no invoice qualifies.
func averageDelay(delays []int64) int64 {
	if len(delays) == 0 {
		return 0
	}
	var sum int64
	for _, d := range delays {
		sum += d
	}
	return int64(math.Round(float64(sum) / float64(len(delays))))
}
