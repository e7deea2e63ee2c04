package priceService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/externalApi"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
	"github.com/tuanvm/investfolio/utils"
)

// PriceSource is one external price adapter, resolved by instrument code.
type PriceSource interface {
	Code() string
	GetQuote(ctx context.Context) (model.Quote, error)
}

type Cache interface {
	GetQuote(ctx context.Context, code string) (model.Quote, error)
	SetQuote(ctx context.Context, quote model.Quote) error
}

type Repository interface {
	GetCategory(ctx context.Context, categoryID, userID int64) (model.Category, error)
	GetHoldingByCategory(ctx context.Context, categoryID int64) (model.Holding, error)
	UpdateHoldingCurrentValue(ctx context.Context, categoryID int64, value decimal.Decimal) error
}

type PriceService struct {
	repo    Repository
	cache   Cache
	sources map[string]PriceSource
}

func New(repo Repository, cache Cache, sources ...PriceSource) *PriceService {
	byCode := make(map[string]PriceSource, len(sources))
	for _, source := range sources {
		byCode[source.Code()] = source
	}
	return &PriceService{repo: repo, cache: cache, sources: byCode}
}

func (s *PriceService) GetQuote(ctx context.Context, code string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceService.GetQuote"

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
	defer func() {
		slog.Debug("GetQuote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
	}()

	source, ok := s.sources[code]
	if !ok {
		return model.Quote{}, service.ErrNotFound
	}

	quote, err := s.cache.GetQuote(ctx, code)
	if err == nil {
		return quote, nil
	}

	quote, err = source.GetQuote(ctx)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("quote not found in external source", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
			return model.Quote{}, service.ErrNotFound
		}
		slog.Error("can't get quote from external source", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	go func() {
		if err := s.cache.SetQuote(context.WithoutCancel(ctx), quote); err != nil {
			slog.Error("can't cache quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code), slog.String("err", err.Error()))
		}
	}()

	return quote, nil
}

// RefreshQuotes re-fetches every known instrument and rewrites the cache.
// Used by the periodic cache warmup job.
func (s *PriceService) RefreshQuotes(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceService.RefreshQuotes"

	slog.Debug("RefreshQuotes start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshQuotes finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	var failed int
	for code, source := range s.sources {
		quote, err := source.GetQuote(ctx)
		if err != nil {
			slog.Error("can't refresh quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code), slog.String("err", err.Error()))
			failed++
			continue
		}

		if err := s.cache.SetQuote(ctx, quote); err != nil {
			slog.Error("can't cache quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code), slog.String("err", err.Error()))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("quote refresh failed for %d of %d sources", failed, len(s.sources))
	}

	return nil
}

// ApplyQuote revalues a holding at quantity times the fetched price.
func (s *PriceService) ApplyQuote(ctx context.Context, userID, categoryID int64, code string) (model.Holding, model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceService.ApplyQuote"

	slog.Debug("ApplyQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code), slog.Int64("categoryID", categoryID))
	defer func() {
		slog.Debug("ApplyQuote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
	}()

	_, err := s.repo.GetCategory(ctx, categoryID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Holding{}, model.Quote{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, model.Quote{}, err
	}

	quote, err := s.GetQuote(ctx, code)
	if err != nil {
		return model.Holding{}, model.Quote{}, err
	}

	holding, err := s.repo.GetHoldingByCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Holding{}, model.Quote{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetHoldingByCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, model.Quote{}, err
	}

	value := holding.Quantity.Mul(quote.Price)

	err = s.repo.UpdateHoldingCurrentValue(ctx, categoryID, value)
	if err != nil {
		slog.Error("got error from repo.UpdateHoldingCurrentValue", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, model.Quote{}, err
	}

	holding.CurrentValue = value

	return holding, quote, nil
}
