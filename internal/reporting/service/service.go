// Package service computes role-scoped dashboard reports.
package service

import (
	"context"
	"strings"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/scope"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/internal/reporting/aggregate"
	"leadportal_backend/internal/reporting/cache"
	"leadportal_backend/internal/reporting/daterange"
	"leadportal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ScopeResolver builds the actor's lead query.
type ScopeResolver interface {
	Resolve(ctx context.Context, actor domain.Actor, filters scope.Filters) (domain.LeadQuery, error)
}

// Request selects the leads a report covers.
type Request struct {
	Timeline   daterange.Timeline
	Start      *time.Time
	End        *time.Time
	OwnerID    *uuid.UUID
	Role       *domain.Role
	CampaignID *uuid.UUID
}

// Overview bundles every dashboard report.
type Overview struct {
	Categories   []aggregate.CategoryCount `json:"categories"`
	Distribution aggregate.Distribution    `json:"distribution"`
	Trend        aggregate.Series          `json:"trend"`
}

// Service computes reports.
type Service struct {
	repo     repository.AggregateReader
	resolver ScopeResolver
	ranges   *daterange.Builder
	cache    *cache.RedisCache
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// New creates a reporting service. cache may be nil.
func New(repo repository.AggregateReader, resolver ScopeResolver, ranges *daterange.Builder, c *cache.RedisCache, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, ranges: ranges, cache: c, metrics: m, log: log}
}

// Categories returns the category cards.
func (s *Service) Categories(ctx context.Context, actor domain.Actor, req Request) ([]aggregate.CategoryCount, error) {
	return cached(ctx, s, s.key("categories", actor, req), func() ([]aggregate.CategoryCount, error) {
		query, err := s.query(ctx, actor, req, s.ranges.Build(req.Timeline, req.Start, req.End))
		if err != nil {
			return nil, err
		}
		counts, err := s.countByStatus(ctx, query)
		if err != nil {
			return nil, err
		}
		return aggregate.Categories(actor.Role, counts), nil
	})
}

// StatusDistribution returns the status pie.
func (s *Service) StatusDistribution(ctx context.Context, actor domain.Actor, req Request) (aggregate.Distribution, error) {
	return cached(ctx, s, s.key("distribution", actor, req), func() (aggregate.Distribution, error) {
		query, err := s.query(ctx, actor, req, s.ranges.Build(req.Timeline, req.Start, req.End))
		if err != nil {
			return aggregate.Distribution{}, err
		}
		query.IncludeStatuses = aggregate.PieStatuses(actor.Role)
		counts, err := s.countByStatus(ctx, query)
		if err != nil {
			return aggregate.Distribution{}, err
		}
		return aggregate.StatusDistribution(actor.Role, counts), nil
	})
}

// Trend returns the bucketed trend series.
func (s *Service) Trend(ctx context.Context, actor domain.Actor, req Request) (aggregate.Series, error) {
	rng, err := s.ranges.BuildForTrend(req.Timeline, req.Start, req.End)
	if err != nil {
		return aggregate.Series{}, err
	}
	return cached(ctx, s, s.key("trend", actor, req), func() (aggregate.Series, error) {
		query, err := s.query(ctx, actor, req, rng)
		if err != nil {
			return aggregate.Series{}, err
		}
		var hours []repository.HourCount
		if !query.MatchesNothing() {
			hours, err = s.repo.CountByHour(ctx, query, s.ranges.Location())
			if err != nil {
				return aggregate.Series{}, err
			}
		}
		return aggregate.Trend(req.Timeline, rng, hours)
	})
}

// Overview computes the three reports concurrently.
func (s *Service) Overview(ctx context.Context, actor domain.Actor, req Request) (Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		categories, err := s.Categories(gctx, actor, req)
		out.Categories = categories
		return err
	})
	g.Go(func() error {
		distribution, err := s.StatusDistribution(gctx, actor, req)
		out.Distribution = distribution
		return err
	})
	g.Go(func() error {
		trend, err := s.Trend(gctx, actor, req)
		out.Trend = trend
		return err
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func (s *Service) query(ctx context.Context, actor domain.Actor, req Request, rng daterange.Range) (domain.LeadQuery, error) {
	return s.resolver.Resolve(ctx, actor, scope.Filters{
		CampaignID:  req.CampaignID,
		OwnerID:     req.OwnerID,
		Role:        req.Role,
		CreatedFrom: rng.From,
		CreatedTo:   rng.To,
	})
}

func (s *Service) countByStatus(ctx context.Context, query domain.LeadQuery) ([]repository.StatusRoleCount, error) {
	if query.MatchesNothing() {
		return nil, nil
	}
	return s.repo.CountByStatusAndRole(ctx, query)
}

func (s *Service) key(report string, actor domain.Actor, req Request) string {
	parts := []string{report, actor.ID.String(), string(actor.Role), vendorKey(actor.AssignedVendorIDs), string(req.Timeline)}
	// Relative timelines move with the clock; pin them to the current local day.
	parts = append(parts, s.ranges.Now().Format(time.DateOnly))
	parts = append(parts, timeKey(req.Start), timeKey(req.End), uuidKey(req.OwnerID), uuidKey(req.CampaignID))
	if req.Role != nil {
		parts = append(parts, string(*req.Role))
	} else {
		parts = append(parts, "")
	}
	return cache.Key(parts...)
}

func cached[T any](ctx context.Context, s *Service, key string, compute func() (T, error)) (T, error) {
	var hit T
	found, err := s.cache.Get(ctx, key, &hit)
	if err != nil {
		s.log.WithContext(ctx).Warn("report cache read failed", "error", err)
	}
	if found {
		s.metrics.IncrementReportCache("hit")
		return hit, nil
	}
	if s.cache != nil {
		s.metrics.IncrementReportCache("miss")
	}

	result, err := compute()
	if err != nil {
		return result, err
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		s.log.WithContext(ctx).Warn("report cache write failed", "error", err)
	}
	return result, nil
}

func timeKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func uuidKey(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func vendorKey(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
