package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// generator invents filler providers from the catalog word pools.
type generator struct {
	filler Filler
	rand   *rand.Rand
}

func (g *generator) pick(pool []string) string {
	return pool[g.rand.IntN(len(pool))]
}

// BusinessName is "<prefix> <suffix>", with a category word in the middle
// half of the time.
func (g *generator) BusinessName(category string) string {
	prefix := g.pick(g.filler.Prefixes)
	suffix := g.pick(g.filler.Suffixes)

	words, ok := g.filler.Words[category]
	if !ok {
		words = []string{category}
	}
	middle := g.pick(words)

	if g.rand.IntN(2) == 1 {
		return prefix + " " + middle + " " + suffix
	}
	return prefix + " " + suffix
}

func (g *generator) ShortDescription(category string) string {
	pool, ok := g.filler.ShortDescriptions[category]
	if !ok {
		return fmt.Sprintf("Professional %s services for businesses and individuals", category)
	}
	return g.pick(pool)
}

// Description joins a short intro, one or two distinct detail paragraphs and
// a closing line with blank lines between them.
func (g *generator) Description(category string) string {
	details, ok := g.filler.Details[category]
	if !ok {
		details = []string{fmt.Sprintf("We provide comprehensive %s services tailored to meet the unique needs of our clients. "+
			"Our experienced team works closely with each client to understand their specific requirements "+
			"and deliver customized solutions that add value and drive results.", category)}
	}

	paragraphs := []string{g.ShortDescription(category)}
	first := g.rand.IntN(len(details))
	paragraphs = append(paragraphs, details[first])

	if len(details) > 1 && g.rand.IntN(2) == 1 {
		second := g.rand.IntN(len(details) - 1)
		if second >= first {
			second++
		}
		paragraphs = append(paragraphs, details[second])
	}

	paragraphs = append(paragraphs, conclusion(category))
	return strings.Join(paragraphs, "\n\n")
}

func conclusion(category string) string {
	return fmt.Sprintf("Contact us today to learn how our %s solutions can help your business succeed.",
		strings.ToLower(category))
}
