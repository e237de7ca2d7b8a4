// Package seed fills the directory with demo categories and providers.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/servicehub/provider-directory/models"
	"gorm.io/gorm"
)

// ErrNoSeedLogos is returned when the seed logo directory is missing or has
// no files in it.
var ErrNoSeedLogos = errors.New("no seed logos")

// LogoURLPrefix is where copied logos are served from.
const LogoURLPrefix = "/storage/logos/"

const randomPrefixLen = 10

type Options struct {
	// StorageDir is the public storage root; logos land in StorageDir/logos.
	StorageDir string
	// LogosDir holds the source logo images.
	LogosDir string
	Rand     *rand.Rand
	Logger   *slog.Logger
}

type Result struct {
	Categories int
	Providers  int
}

type Seeder struct {
	db      *gorm.DB
	catalog *Catalog
	opts    Options
	gen     *generator
}

func New(db *gorm.DB, catalog *Catalog, opts Options) *Seeder {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Seeder{
		db:      db,
		catalog: catalog,
		opts:    opts,
		gen:     &generator{filler: catalog.Filler, rand: opts.Rand},
	}
}

// Run creates the catalog categories (reusing existing ones by slug), the
// hand-written providers, and two or three generated providers for every
// other category. Each provider gets its own copy of a seed logo.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	logos, err := newLogoPool(s.opts.LogosDir, s.opts.Rand)
	if err != nil {
		return Result{}, err
	}
	destDir := filepath.Join(s.opts.StorageDir, "logos")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating logo directory: %w", err)
	}

	var res Result
	var copied []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := s.seedCategories(tx)
		if err != nil {
			return err
		}
		res.Categories = len(categories)

		var existing []string
		if err := tx.Model(&models.ServiceProvider{}).Pluck("slug", &existing).Error; err != nil {
			return fmt.Errorf("loading provider slugs: %w", err)
		}
		slugs := make(map[string]bool, len(existing))
		for _, sl := range existing {
			slugs[sl] = true
		}

		create := func(category models.Category, p ProviderSeed) error {
			name, err := s.copyLogo(logos.Next(), destDir)
			if err != nil {
				return err
			}
			copied = append(copied, filepath.Join(destDir, name))
			provider := models.ServiceProvider{
				Name:             p.Name,
				Slug:             uniqueSlug(slugs, p.Name),
				ShortDescription: p.ShortDescription,
				Description:      p.Description,
				Logo:             LogoURLPrefix + name,
				CategoryID:       category.ID,
			}
			if err := tx.Create(&provider).Error; err != nil {
				return fmt.Errorf("creating provider %q: %w", p.Name, err)
			}
			res.Providers++
			return nil
		}

		for _, g := range s.catalog.Providers {
			for _, p := range g.Providers {
				if err := create(categories[g.Category], p); err != nil {
					return err
				}
			}
		}

		for _, c := range s.catalog.Categories {
			if s.catalog.predefined(c.Name) {
				continue
			}
			n := 2 + s.opts.Rand.IntN(2)
			for range n {
				p := ProviderSeed{
					Name:             s.gen.BusinessName(c.Name),
					ShortDescription: s.gen.ShortDescription(c.Name),
					Description:      s.gen.Description(c.Name),
				}
				if err := create(categories[c.Name], p); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		s.removeFiles(copied)
		return Result{}, err
	}

	s.opts.Logger.Info("directory seeded", "categories", res.Categories, "providers", res.Providers)
	return res, nil
}

func (s *Seeder) seedCategories(tx *gorm.DB) (map[string]models.Category, error) {
	out := make(map[string]models.Category, len(s.catalog.Categories))
	for _, c := range s.catalog.Categories {
		var category models.Category
		err := tx.Where(models.Category{Slug: slug.Make(c.Name)}).
			Attrs(models.Category{Name: c.Name}).
			FirstOrCreate(&category).Error
		if err != nil {
			return nil, fmt.Errorf("creating category %q: %w", c.Name, err)
		}
		out[c.Name] = category
	}
	return out, nil
}

// removeFiles deletes logos copied by a run whose transaction rolled back.
func (s *Seeder) removeFiles(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.opts.Logger.Warn("removing copied logo", "path", p, "error", err)
		}
	}
}

// copyLogo copies src into dir under a random prefix and returns the file
// name of the copy.
func (s *Seeder) copyLogo(src, dir string) (string, error) {
	name := randomString(s.opts.Rand, randomPrefixLen) + "_" + filepath.Base(src)

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening seed logo: %w", err)
	}
	defer in.Close()

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating logo: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copying logo: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("copying logo: %w", err)
	}
	return name, nil
}

// uniqueSlug slugifies name, appending -2, -3, ... until it is not in taken,
// and records the result.
func uniqueSlug(taken map[string]bool, name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	taken[candidate] = true
	return candidate
}

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(r *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphabet[r.IntN(len(alphabet))])
	}
	return b.String()
}

// logoPool hands out seed logos without repeating one until every logo has
// been used.
type logoPool struct {
	files []string
	used  map[string]bool
	rand  *rand.Rand
}

func newLogoPool(dir string, r *rand.Rand) (*logoPool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: directory %s not found", ErrNoSeedLogos, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading seed logos: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoSeedLogos, dir)
	}
	return &logoPool{files: files, used: make(map[string]bool, len(files)), rand: r}, nil
}

func (p *logoPool) Next() string {
	if len(p.used) == len(p.files) {
		clear(p.used)
	}
	available := make([]string, 0, len(p.files)-len(p.used))
	for _, f := range p.files {
		if !p.used[f] {
			available = append(available, f)
		}
	}
	f := available[p.rand.IntN(len(available))]
	p.used[f] = true
	return f
}
