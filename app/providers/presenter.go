package providers

import (
	"strings"
	"time"

	"github.com/servicehub/provider-directory/models"
)

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Provider is the listing representation of a service provider.
type Provider struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	ShortDescription string    `json:"short_description"`
	Logo             *string   `json:"logo"`
	LogoURL          *string   `json:"logo_url"`
	CategoryID       uint      `json:"category_id"`
	Category         *Category `json:"category,omitempty"`
}

// ProviderDetail is the full representation returned for a single provider.
type ProviderDetail struct {
	Provider
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LogoURL resolves a stored logo to a public URL. Empty logos have no URL,
// absolute URLs are returned as they are, and paths are joined onto baseURL.
func LogoURL(logo, baseURL string) *string {
	if logo == "" {
		return nil
	}
	if strings.HasPrefix(logo, "http://") || strings.HasPrefix(logo, "https://") {
		return &logo
	}
	u := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(logo, "/")
	return &u
}

func NewProvider(p models.ServiceProvider, baseURL string) Provider {
	resp := Provider{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		LogoURL:          LogoURL(p.Logo, baseURL),
		CategoryID:       p.CategoryID,
	}
	if p.Logo != "" {
		logo := p.Logo
		resp.Logo = &logo
	}
	// A zero category id means the relation was not loaded.
	if p.Category.ID != 0 {
		resp.Category = &Category{
			ID:   p.Category.ID,
			Name: p.Category.Name,
			Slug: p.Category.Slug,
		}
	}
	return resp
}

func NewProviderDetail(p models.ServiceProvider, baseURL string) ProviderDetail {
	return ProviderDetail{
		Provider:    NewProvider(p, baseURL),
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
