package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/repository"
)

func TestCatalogService_List(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	log, _ := test.NewNullLogger()
	svc := NewCatalogService(repository.NewGormServiceCatalog(db), log)

	mustService(t, db, "Wash", 50)
	mustService(t, db, "Cut", 100)
	retired := mustService(t, db, "Perm", 400)
	require.NoError(t, db.Model(retired).Update("is_active", false).Error)

	cust := Actor{ID: 1, Role: model.RoleCustomer}
	page, err := svc.List(ctx, cust, ListServicesInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Cut", page.Items[0].Name)
	assert.Equal(t, int64(2), page.Meta.TotalItems)

	_, err = svc.List(ctx, cust, ListServicesInput{IncludeInactive: true})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	page, err = svc.List(ctx, Actor{ID: 2, Role: model.RoleAdmin}, ListServicesInput{IncludeInactive: true, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.CurrentPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Wash", page.Items[0].Name)
}
