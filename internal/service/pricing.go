package service

import (
	"context"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
)

// ServiceLookup is the part of the catalog pricing needs.
type ServiceLookup interface {
	ListByIDs(ctx context.Context, ids []int64) ([]model.ServiceItem, error)
}

type Price struct {
	Base  int64
	Total int64
}

// PricingCalculator prices a service selection against current catalog prices.
type PricingCalculator struct{}

// Quote sums the current unit prices of serviceIDs and applies the adjustments.
// Duplicate ids are counted once.
func (PricingCalculator) Quote(
	ctx context.Context,
	catalog ServiceLookup,
	serviceIDs []int64,
	surcharge, promotion int64,
) (Price, error) {
	ids := uniqueIDs(serviceIDs)
	if len(ids) == 0 {
		return Price{}, apperror.Validation("at least one service is required")
	}

	services, err := catalog.ListByIDs(ctx, ids)
	if err != nil {
		return Price{}, err
	}
	byID := make(map[int64]model.ServiceItem, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	var base int64
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return Price{}, apperror.Validation("service %d not found", id)
		}
		if !s.IsActive {
			return Price{}, apperror.Validation("service %d is not available", id)
		}
		base += s.Price
	}

	total, err := TotalPrice(base, surcharge, promotion)
	if err != nil {
		return Price{}, err
	}
	return Price{Base: base, Total: total}, nil
}

// TotalPrice is base + surcharge - promotion; it must not go below zero.
func TotalPrice(base, surcharge, promotion int64) (int64, error) {
	if surcharge < 0 {
		return 0, apperror.Validation("surcharge must not be negative")
	}
	if promotion < 0 {
		return 0, apperror.Validation("promotion must not be negative")
	}
	total := base + surcharge - promotion
	if total < 0 {
		return 0, apperror.Validation("total price must not be negative")
	}
	return total, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
