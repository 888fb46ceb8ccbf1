package navigation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/navigation"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	intents []domain.Intent
	failOn  domain.IntentType
}

func (r *recorder) Dispatch(_ context.Context, intent domain.Intent) error {
	if intent.Type == r.failOn {
		return errors.New("host unavailable")
	}
	r.intents = append(r.intents, intent)
	return nil
}

func loading() domain.Intent { return domain.Intent{Type: domain.IntentLoadingStart} }

func app(path string) domain.Intent { return domain.Intent{Type: domain.IntentApp, Path: path} }

func TestResource_Paths(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	products := navigation.New(rec).Resource("products/")

	assert.Equal(t, "/products", products.URL())

	require.NoError(t, products.Index(ctx))
	require.NoError(t, products.New(ctx))
	require.NoError(t, products.Show(ctx, 42))
	require.NoError(t, products.Edit(ctx, "abc"))

	assert.Equal(t, []domain.Intent{
		app("/products"), loading(),
		app("/products/new"), loading(),
		app("/products/42"), loading(),
		app("/products/abc/edit"), loading(),
	}, rec.intents)
}

func TestHome(t *testing.T) {
	rec := &recorder{}
	home := navigation.New(rec).Home()

	require.NoError(t, home.Index(context.Background()))
	require.NoError(t, home.Show(context.Background(), 7))
	assert.Equal(t, []domain.Intent{app("/"), loading(), app("/7"), loading()}, rec.intents)
}

func TestAdminSections(t *testing.T) {
	ctx := context.Background()
	var got []domain.Intent
	nav := navigation.New(ports.RedirectDispatcherFunc(func(_ context.Context, i domain.Intent) error {
		got = append(got, i)
		return nil
	}))

	require.NoError(t, nav.Order(ctx, 1001))
	require.NoError(t, nav.Product(ctx, "gid-7"))

	assert.Equal(t, []domain.Intent{
		{Type: domain.IntentAdminSection, Resource: domain.ResourceOrder, ID: "1001"},
		{Type: domain.IntentAdminSection, Resource: domain.ResourceProduct, ID: "gid-7"},
	}, got, "admin redirects do not start loading")
}

func TestDispatchErrors(t *testing.T) {
	ctx := context.Background()

	rec := &recorder{failOn: domain.IntentApp}
	err := navigation.New(rec).Resource("/orders").Index(ctx)
	assert.ErrorContains(t, err, "redirect to /orders")
	assert.Empty(t, rec.intents, "no loading without a redirect")

	rec = &recorder{failOn: domain.IntentLoadingStart}
	err = navigation.New(rec).Resource("/orders").Index(ctx)
	assert.ErrorContains(t, err, "start loading")
	assert.Equal(t, []domain.Intent{app("/orders")}, rec.intents)
}
