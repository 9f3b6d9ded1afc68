package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"movie-awards/internal/domain"
)

const applyMinFilterParam = "/config/apply_min_filter"

type AwardStore interface {
	QueryAwards(ctx context.Context, movieID int, awardBody string) ([]domain.AwardRecord, error)
}

type FlagGetter interface {
	GetBool(ctx context.Context, name string) (bool, error)
}

type Option func(*LookupService)

// WithLogger sets the logger used for diagnostic lines.
func WithLogger(logger *slog.Logger) Option {
	return func(s *LookupService) {
		s.logger = logger
	}
}

// WithApplyMinFilter controls whether the min filter result replaces the
// returned collection. When false the filter is still computed and logged.
func WithApplyMinFilter(apply bool) Option {
	return func(s *LookupService) {
		s.applyMinFilter = apply
	}
}

// WithFlagStore resolves the min filter policy from <prefix>/config/apply_min_filter
// on first use, overriding WithApplyMinFilter.
func WithFlagStore(flags FlagGetter, prefix string) Option {
	return func(s *LookupService) {
		s.flags = flags
		s.paramPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

type LookupService struct {
	store  AwardStore
	logger *slog.Logger

	applyMinFilter bool
	flags          FlagGetter
	paramPrefix    string

	cacheMu     sync.RWMutex
	cacheLoaded bool
}

// LookupInput carries the parsed request. Zero values mean absent.
type LookupInput struct {
	MovieID   int
	AwardBody string
	Min       int
}

type LookupOutput struct {
	Awards []domain.AwardRecord
}

func NewLookupService(store AwardStore, opts ...Option) (*LookupService, error) {
	if store == nil {
		return nil, errors.New("usecase: award store must not be nil")
	}
	s := &LookupService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.flags != nil && s.paramPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty")
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return s, nil
}

func (s *LookupService) Lookup(ctx context.Context, in LookupInput) (LookupOutput, error) {
	if in.MovieID == 0 || in.AwardBody == "" {
		return LookupOutput{}, newError(ErrorMissingParameters, "missing_movie_id_or_award_body", nil)
	}
	if err := s.ensureConfig(ctx); err != nil {
		return LookupOutput{}, newError(ErrorInternal, "ssm_load_error", err)
	}

	awards, err := s.store.QueryAwards(ctx, in.MovieID, in.AwardBody)
	if errors.Is(err, domain.ErrNoItemCollection) {
		s.logger.Info("store response", "movieId", in.MovieID, "awardBody", in.AwardBody, "itemCollection", false)
		return LookupOutput{}, newError(ErrorNotFound, "no_item_collection", nil)
	}
	if err != nil {
		return LookupOutput{}, newError(ErrorInternal, "store_query_error", err)
	}
	s.logger.Info("store response", "movieId", in.MovieID, "awardBody", in.AwardBody, "itemCollection", true, "count", len(awards))
	s.logger.Debug("store response items", "movieId", in.MovieID, "awardBody", in.AwardBody, "items", awards)

	data := awards
	if in.Min != 0 {
		filtered := FilterByMinAwards(awards, in.Min)
		s.logger.Debug("min filter computed", "min", in.Min, "matched", len(filtered), "applied", s.applyMinFilter)
		if s.applyMinFilter {
			data = filtered
		}
	}
	return LookupOutput{Awards: data}, nil
}

// FilterByMinAwards returns the records whose numAwards is at least threshold, in
// their original order. The result is never nil.
func FilterByMinAwards(awards []domain.AwardRecord, threshold int) []domain.AwardRecord {
	out := make([]domain.AwardRecord, 0, len(awards))
	for _, a := range awards {
		if a.MeetsMinimum(threshold) {
			out = append(out, a)
		}
	}
	return out
}

func (s *LookupService) ensureConfig(ctx context.Context) error {
	if s.flags == nil {
		return nil
	}
	s.cacheMu.RLock()
	if s.cacheLoaded {
		s.cacheMu.RUnlock()
		return nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheLoaded {
		return nil
	}

	apply, err := s.flags.GetBool(ctx, s.paramPrefix+applyMinFilterParam)
	if err != nil {
		return fmt.Errorf("usecase: load apply_min_filter: %w", err)
	}
	s.applyMinFilter = apply
	s.cacheLoaded = true
	return nil
}
