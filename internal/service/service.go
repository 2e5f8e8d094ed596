package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/logging"
	"github.com/actuallystonmai/group-dining-service/internal/metrics"
	"github.com/actuallystonmai/group-dining-service/internal/profile"
	"github.com/actuallystonmai/group-dining-service/internal/scoring"
	"github.com/actuallystonmai/group-dining-service/internal/source"
)

const (
	defaultLimit = scoring.DefaultTopK
	maxLimit     = 50
)

type Options struct {
	DefaultTopK int
	MaxTopK     int
	TopCuisines int
}

type Service struct {
	source   source.Source
	strategy scoring.Strategy
	opts     Options
	tracer   trace.Tracer
	log      zerolog.Logger
}

func NewService(src source.Source, strategy scoring.Strategy, opts Options) *Service {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = defaultLimit
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = maxLimit
	}
	if opts.TopCuisines <= 0 {
		opts.TopCuisines = profile.DefaultTopCuisines
	}
	return &Service{
		source:   src,
		strategy: strategy,
		opts:     opts,
		tracer:   otel.Tracer("group-dining/service"),
		log:      logging.With("service"),
	}
}

// Recommend aggregates the group, fetches candidates for the strategy's
// query and ranks them. Empty matches return an empty result with the
// profile still populated. Errors from the profile builder and the candidate
// source are returned unchanged.
func (s *Service) Recommend(ctx context.Context, members []domain.MemberPreference, topK int) (*domain.Recommendation, error) {
	start := time.Now()
	name := s.strategy.Name()
	topK = s.clampTopK(topK)

	ctx, span := s.tracer.Start(ctx, "service.Recommend",
		trace.WithAttributes(
			attribute.String("strategy", name),
			attribute.Int("group.size", len(members)),
			attribute.Int("top_k", topK),
		),
	)
	defer span.End()

	rec, err := s.recommend(ctx, members, topK)

	metrics.RecommendDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecommendRequests.WithLabelValues(name, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecommendRequests.WithLabelValues(name, "ok").Inc()
	metrics.RecommendResults.Observe(float64(len(rec.Results)))
	if rec.Fallback {
		metrics.RecommendFallbacks.Inc()
	}
	span.SetAttributes(
		attribute.Int("results", len(rec.Results)),
		attribute.Bool("fallback", rec.Fallback),
	)

	s.log.Debug().
		Int("members", len(members)).
		Int("results", len(rec.Results)).
		Bool("fallback", rec.Fallback).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation generated")

	return rec, nil
}

func (s *Service) recommend(ctx context.Context, members []domain.MemberPreference, topK int) (*domain.Recommendation, error) {
	p, err := profile.Build(members, s.opts.TopCuisines)
	if err != nil {
		return nil, err
	}

	rec := &domain.Recommendation{
		Profile:  p,
		Strategy: s.strategy.Name(),
	}

	candidates, err := s.fetch(ctx, s.strategy.Query(p, topK))
	if err != nil {
		return nil, err
	}
	rec.Results = s.strategy.Rank(candidates, p, topK)

	if len(rec.Results) == 0 {
		if fb, ok := s.strategy.(scoring.FallbackRanker); ok {
			candidates, err = s.fetch(ctx, fb.FallbackQuery(p, topK))
			if err != nil {
				return nil, err
			}
			rec.Results = fb.RankFallback(candidates, p, topK)
			rec.Fallback = true
		}
	}

	if rec.Results == nil {
		rec.Results = []domain.ScoredResult{}
	}
	return rec, nil
}

func (s *Service) fetch(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	ctx, span := s.tracer.Start(ctx, "service.fetchCandidates",
		trace.WithAttributes(
			attribute.StringSlice("cuisines", q.Cuisines),
			attribute.String("sort_by", q.SortBy),
		),
	)
	defer span.End()

	venues, err := s.source.Fetch(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn().Err(err).Strs("cuisines", q.Cuisines).Msg("candidate fetch failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("candidates", len(venues)))
	return source.Dedupe(venues), nil
}

func (s *Service) clampTopK(topK int) int {
	if topK <= 0 {
		return s.opts.DefaultTopK
	}
	if topK > s.opts.MaxTopK {
		return s.opts.MaxTopK
	}
	return topK
}
