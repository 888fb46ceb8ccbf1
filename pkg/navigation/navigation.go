package navigation

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
)

// Navigator turns navigation requests into intents for a RedirectDispatcher.
// Every in-app redirect is followed by a loading intent, so the host can show
// progress while the target page loads.
type Navigator struct {
	dispatcher ports.RedirectDispatcher
}

// New creates a Navigator on top of the host dispatcher.
func New(dispatcher ports.RedirectDispatcher) *Navigator {
	return &Navigator{dispatcher: dispatcher}
}

// Home returns the application root resource.
func (n *Navigator) Home() *Resource {
	return &Resource{nav: n, base: "/"}
}

// Resource returns a resource rooted at base (e.g. "/products").
func (n *Navigator) Resource(base string) *Resource {
	return &Resource{nav: n, base: "/" + strings.Trim(base, "/")}
}

// Order opens an order page of the hosting admin.
func (n *Navigator) Order(ctx context.Context, id any) error {
	return n.admin(ctx, domain.ResourceOrder, id)
}

// Product opens a product page of the hosting admin.
func (n *Navigator) Product(ctx context.Context, id any) error {
	return n.admin(ctx, domain.ResourceProduct, id)
}

func (n *Navigator) admin(ctx context.Context, resource domain.ResourceType, id any) error {
	return n.dispatcher.Dispatch(ctx, domain.Intent{
		Type:     domain.IntentAdminSection,
		Resource: resource,
		ID:       fmt.Sprint(id),
	})
}

// app dispatches an in-app redirect and then starts the loading indicator.
func (n *Navigator) app(ctx context.Context, path string) error {
	if err := n.dispatcher.Dispatch(ctx, domain.Intent{Type: domain.IntentApp, Path: path}); err != nil {
		return fmt.Errorf("redirect to %s: %w", path, err)
	}
	if err := n.dispatcher.Dispatch(ctx, domain.Intent{Type: domain.IntentLoadingStart}); err != nil {
		return fmt.Errorf("start loading: %w", err)
	}
	return nil
}

// Resource builds the conventional CRUD paths below a base URL.
type Resource struct {
	nav  *Navigator
	base string
}

// URL returns the resource base path.
func (r *Resource) URL() string {
	return r.base
}

// Index redirects to the resource list.
func (r *Resource) Index(ctx context.Context) error {
	return r.nav.app(ctx, r.base)
}

// New redirects to the creation page.
func (r *Resource) New(ctx context.Context) error {
	return r.nav.app(ctx, r.join("new"))
}

// Show redirects to a single item.
func (r *Resource) Show(ctx context.Context, id any) error {
	return r.nav.app(ctx, r.join(fmt.Sprint(id)))
}

// Edit redirects to the edit page of a single item.
func (r *Resource) Edit(ctx context.Context, id any) error {
	return r.nav.app(ctx, r.join(fmt.Sprint(id), "edit"))
}

func (r *Resource) join(parts ...string) string {
	return strings.TrimSuffix(r.base, "/") + "/" + strings.Join(parts, "/")
}
