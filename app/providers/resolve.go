package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/servicehub/provider-directory/app/api"
	"github.com/servicehub/provider-directory/models"
)

type providerKey struct{}

// ResolveProvider binds the {slug} path value to a provider before next
// runs. Unknown slugs are answered with 404 and next is never called.
func (h *ProviderHandler) ResolveProvider(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provider, err := h.repo.GetBySlug(r.Context(), r.PathValue("slug"))
		if errors.Is(err, models.ErrProviderNotFound) {
			api.WriteError(w, http.StatusNotFound, MessageNotFound)
			return
		}
		if err != nil {
			api.WriteServerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), providerKey{}, provider)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ProviderFromContext(ctx context.Context) (*models.ServiceProvider, bool) {
	p, ok := ctx.Value(providerKey{}).(*models.ServiceProvider)
	return p, ok && p != nil
}
