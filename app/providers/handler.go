package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/servicehub/provider-directory/app/api"
	"github.com/servicehub/provider-directory/models"
)

const (
	MessageListRetrieved = "Service providers retrieved successfully."
	MessageRetrieved     = "Service provider retrieved successfully."
	MessageListNotFound  = "No service providers found."
	MessageNotFound      = "No service provider found."
)

type ProviderRepository interface {
	GetFilteredProviders(ctx context.Context, offset, limit int, filters models.ProviderFilters) ([]models.ServiceProvider, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.ServiceProvider, error)
}

type ProviderHandler struct {
	repo    ProviderRepository
	baseURL string
}

// NewProviderHandler returns a handler whose logo URLs are built on baseURL.
func NewProviderHandler(r ProviderRepository, baseURL string) *ProviderHandler {
	return &ProviderHandler{
		repo:    r,
		baseURL: baseURL,
	}
}

// ParseFilters reads the listing filters from the query. A filter that is
// present always applies: an empty category or a category_id that is not a
// number (coerced to 0) matches nothing.
func ParseFilters(q url.Values) models.ProviderFilters {
	var filters models.ProviderFilters

	if q.Has("category") {
		category := q.Get("category")
		filters.Category = &category
	}

	if q.Has("category_id") {
		var id uint
		if v, err := strconv.ParseUint(q.Get("category_id"), 10, 0); err == nil {
			id = uint(v)
		}
		filters.CategoryID = &id
	}

	return filters
}

// HandleGet lists providers. An empty page is reported as 404 rather than
// as an empty success envelope.
func (h *ProviderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := api.ParsePage(q)
	filters := ParseFilters(q)

	res, total, err := h.repo.GetFilteredProviders(r.Context(), page.Offset(), page.PerPage, filters)
	if err != nil {
		api.WriteServerError(w, r, err)
		return
	}

	if len(res) == 0 {
		api.WriteError(w, http.StatusNotFound, MessageListNotFound)
		return
	}

	data := make([]Provider, len(res))
	for i, p := range res {
		data[i] = NewProvider(p, h.baseURL)
	}

	api.WriteSuccess(w, MessageListRetrieved, data, api.NewMeta(r, page, len(data), total))
}

// HandleGetProvider writes the provider bound by ResolveProvider.
func (h *ProviderHandler) HandleGetProvider(w http.ResponseWriter, r *http.Request) {
	provider, ok := ProviderFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusNotFound, MessageNotFound)
		return
	}

	api.WriteSuccess(w, MessageRetrieved, NewProviderDetail(*provider, h.baseURL), nil)
}
