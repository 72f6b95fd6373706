package marketdata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/rampsim/internal/model"
)

// PriceSource returns USD prices for crypto ids.
type PriceSource interface {
	Prices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
}

// RateSource returns fiat units per USD.
type RateSource interface {
	Rates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Service assembles a quotes snapshot from live sources.
type Service struct {
	prices   PriceSource
	rates    RateSource
	stream   PriceSource
	fallback bool
	logger   *slog.Logger
}

// NewService creates a Service. stream may be nil; when set it is tried
// before the REST price source.
func NewService(prices PriceSource, rates RateSource, stream PriceSource, fallback bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		prices:   prices,
		rates:    rates,
		stream:   stream,
		fallback: fallback,
		logger:   logger,
	}
}

// Quotes fetches prices and FX rates concurrently. When a source fails and
// fallback is enabled the static table fills in and Quotes.Fallback is set.
func (s *Service) Quotes(ctx context.Context) (model.Quotes, error) {
	var (
		g      errgroup.Group
		prices map[string]decimal.Decimal
		rates  map[string]decimal.Decimal
	)

	g.Go(func() error {
		p, err := s.fetchPrices(ctx)
		if err != nil {
			return err
		}
		prices = p
		return nil
	})
	g.Go(func() error {
		r, err := s.rates.Rates(ctx)
		if err != nil {
			return err
		}
		rates = r
		return nil
	})

	err := g.Wait()
	if err == nil {
		return model.Quotes{Prices: prices, FXRates: rates}, nil
	}
	if !s.fallback {
		return model.Quotes{}, fmt.Errorf("fetch quotes: %w", err)
	}

	s.logger.Warn("live quotes unavailable, using fallback", "error", err)
	q := model.Quotes{Prices: prices, FXRates: rates, Fallback: true}
	if q.Prices == nil {
		q.Prices = FallbackPrices()
	}
	if q.FXRates == nil {
		q.FXRates = FallbackRates()
	}
	return q, nil
}

func (s *Service) fetchPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	if s.stream != nil {
		p, err := s.stream.Prices(ctx, model.SupportedCrypto)
		if err == nil {
			return p, nil
		}
		s.logger.Warn("ticker stream failed, using rest prices", "error", err)
	}
	return s.prices.Prices(ctx, model.SupportedCrypto)
}
