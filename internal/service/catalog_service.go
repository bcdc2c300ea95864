package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/pagination"
	"github.com/Leganyst/salon-core/internal/repository"
)

type ListServicesInput struct {
	IncludeInactive bool // staff only
	Limit           int
	Offset          int
}

// CatalogService lists bookable services with their current prices.
type CatalogService struct {
	catalog repository.ServiceCatalog
	log     logrus.FieldLogger
}

func NewCatalogService(catalog repository.ServiceCatalog, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{catalog: catalog, log: log}
}

func (s *CatalogService) List(ctx context.Context, actor Actor, in ListServicesInput) (pagination.Page[model.ServiceItem], error) {
	if in.IncludeInactive && !actor.Role.IsStaff() {
		return pagination.Page[model.ServiceItem]{}, apperror.Forbidden("only staff can see inactive services")
	}
	opts := pagination.Normalize(in.Limit, in.Offset)

	items, total, err := s.catalog.List(ctx, !in.IncludeInactive, opts)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.WithError(err).Error("list services")
		}
		return pagination.Page[model.ServiceItem]{}, err
	}
	return pagination.NewPage(items, total, opts), nil
}
