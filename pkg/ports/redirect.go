package ports

import (
	"context"

	"github.com/aretw0/formstate/pkg/domain"
)

// RedirectDispatcher hands navigation intents to the host (a router, an
// embedding admin, a test recorder).
type RedirectDispatcher interface {
	Dispatch(ctx context.Context, intent domain.Intent) error
}

// RedirectDispatcherFunc adapts a function to RedirectDispatcher.
type RedirectDispatcherFunc func(ctx context.Context, intent domain.Intent) error

func (f RedirectDispatcherFunc) Dispatch(ctx context.Context, intent domain.Intent) error {
	return f(ctx, intent)
}
