package seed

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed seed_data.yaml
var defaultCatalog []byte

// Catalog is the seed data: the category list, the hand-written providers
// and the word pools filler providers are generated from.
type Catalog struct {
	Categories []CategorySeed  `yaml:"categories" validate:"required,dive"`
	Providers  []ProviderGroup `yaml:"providers" validate:"dive"`
	Filler     Filler          `yaml:"filler"`
}

type CategorySeed struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
}

type ProviderGroup struct {
	Category  string         `yaml:"category" validate:"required"`
	Providers []ProviderSeed `yaml:"providers" validate:"required,dive"`
}

type ProviderSeed struct {
	Name             string `yaml:"name" validate:"required"`
	ShortDescription string `yaml:"short_description" validate:"required"`
	Description      string `yaml:"description" validate:"required"`
}

// Filler pools are keyed by category name. Categories without an entry fall
// back to generic wording.
type Filler struct {
	Prefixes          []string            `yaml:"prefixes" validate:"required,dive,required"`
	Suffixes          []string            `yaml:"suffixes" validate:"required,dive,required"`
	Words             map[string][]string `yaml:"words" validate:"dive,keys,required,endkeys,required,dive,required"`
	ShortDescriptions map[string][]string `yaml:"short_descriptions" validate:"dive,keys,required,endkeys,required,dive,required"`
	Details           map[string][]string `yaml:"details" validate:"dive,keys,required,endkeys,required,dive,required"`
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing seed catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	var errs []error
	known := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if known[cat.Name] {
			errs = append(errs, fmt.Errorf("duplicate category %q", cat.Name))
		}
		known[cat.Name] = true
	}
	for _, g := range c.Providers {
		if !known[g.Category] {
			errs = append(errs, fmt.Errorf("providers listed for unknown category %q", g.Category))
		}
	}
	return errors.Join(errs...)
}

// predefined reports whether the catalog lists hand-written providers for
// the named category.
func (c *Catalog) predefined(category string) bool {
	for _, g := range c.Providers {
		if g.Category == category {
			return true
		}
	}
	return false
}
