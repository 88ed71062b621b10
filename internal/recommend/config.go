// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strings"
	"time"
)

// FamilyRule classifies a perfume into a scent family by keyword vote.
// Rules are evaluated in slice order; ties go to the earlier rule.
type FamilyRule struct {
	Name     string
	Keywords []string
}

// TierRule classifies a brand into a price tier by substring match.
type TierRule struct {
	Name   string
	Brands []string
}

// Config holds every tunable of the recommendation pipeline. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	// DefaultTopN is the result count when the request does not ask
	// for one.
	DefaultTopN int

	// Alpha is the default lexical share of the blended score.
	// AlphaHigh and AlphaLow are chosen instead when the lexical
	// average similarity is strong or weak relative to
	// ValidityThreshold.
	Alpha             float64
	AlphaHigh         float64
	AlphaLow          float64
	ValidityThreshold float64

	// MaxFeatures caps the TF-IDF vocabulary size.
	MaxFeatures int

	// Weighted document repetition counts per field group.
	WeightCoreKeywords float64
	WeightDescription  float64
	WeightNotes        float64
	WeightBrand        float64
	WeightContext      float64

	// ContextBonus is added to the lexical base score per matching
	// categorical attribute (gender, season).
	ContextBonus float64

	// Lexical greedy diversity pass.
	LexicalBrandPenalty   float64
	LexicalNotePenalty    float64
	LexicalNoteCommonMin  int
	LexicalMinScore       float64
	LexicalGuaranteedMin  int
	CandidatePoolFactor   int

	// ExpandFactor and ExpandMin size the oversized candidate pool
	// requested from each scorer before fusion: max(topN*ExpandFactor,
	// ExpandMin).
	ExpandFactor int
	ExpandMin    int

	// MMR diversity selector.
	DiversityWeight    float64
	MMRFloorRatio      float64
	DiversityThreshold float64

	// SeedRandomization enables the randomized seed and weighted
	// top-3 draws in the diversity selector. When disabled the
	// selector is fully deterministic.
	SeedRandomization bool

	// Seed derives the per-request RNG seed. Nil selects the ambient
	// default (wall clock, process id, keyword hash). Tests inject a
	// fixed function for reproducibility.
	Seed func(q Query) int64

	// Classification tables.
	FragranceFamilies   []FamilyRule
	PriceTiers          []TierRule
	DefaultPriceTier    string
	PremiumTiers        []string
	PopularNamePatterns []string
}

// UnclassifiedFamily is the scent family assigned when no rule matches.
const UnclassifiedFamily = "unclassified"

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultTopN:       3,
		Alpha:             0.3,
		AlphaHigh:         0.5,
		AlphaLow:          0.2,
		ValidityThreshold: 0.1,

		MaxFeatures: 3000,

		WeightCoreKeywords: 3.0,
		WeightDescription:  2.0,
		WeightNotes:        1.5,
		WeightBrand:        1.2,
		WeightContext:      1.0,

		ContextBonus: 0.15,

		LexicalBrandPenalty:  0.2,
		LexicalNotePenalty:   0.15,
		LexicalNoteCommonMin: 2,
		LexicalMinScore:      0.05,
		LexicalGuaranteedMin: 2,
		CandidatePoolFactor:  3,

		ExpandFactor: 5,
		ExpandMin:    15,

		DiversityWeight:    0.4,
		MMRFloorRatio:      0.15,
		DiversityThreshold: 0.6,

		SeedRandomization: true,

		FragranceFamilies: []FamilyRule{
			{Name: "floral", Keywords: []string{"flower", "floral", "rose", "jasmine", "peony", "lilac", "blossom"}},
			{Name: "woody", Keywords: []string{"wood", "woody", "sandalwood", "cedar", "vetiver", "oak"}},
			{Name: "fresh", Keywords: []string{"fresh", "citrus", "lemon", "orange", "grapefruit", "mint", "aquatic"}},
			{Name: "oriental", Keywords: []string{"spicy", "vanilla", "musk", "amber", "incense", "spice"}},
			{Name: "fougere", Keywords: []string{"lavender", "herb", "herbal", "aromatic", "sage", "rosemary", "basil"}},
		},
		PriceTiers: []TierRule{
			{Name: "luxury", Brands: []string{"chanel", "dior", "hermes", "hermès", "tom ford", "creed"}},
			{Name: "premium", Brands: []string{"giorgio armani", "lancome", "lancôme", "yves saint laurent", "ysl", "burberry"}},
			{Name: "accessible", Brands: []string{"the body shop", "missha", "innisfree", "etude house"}},
		},
		DefaultPriceTier: "mid_range",
		PremiumTiers:     []string{"luxury", "premium"},
		PopularNamePatterns: []string{
			"eau de", "no.", "noir", "intense", "pour homme", "pour femme",
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.DefaultTopN < 1 {
		return fmt.Errorf("DefaultTopN must be positive, got %d", c.DefaultTopN)
	}
	for name, a := range map[string]float64{
		"Alpha": c.Alpha, "AlphaHigh": c.AlphaHigh, "AlphaLow": c.AlphaLow,
	} {
		if a < 0 || a > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", name, a)
		}
	}
	if c.ValidityThreshold <= 0 {
		return fmt.Errorf("ValidityThreshold must be positive, got %f", c.ValidityThreshold)
	}
	if c.MaxFeatures < 1 {
		return fmt.Errorf("MaxFeatures must be positive, got %d", c.MaxFeatures)
	}
	if c.CandidatePoolFactor < 1 {
		return fmt.Errorf("CandidatePoolFactor must be positive, got %d", c.CandidatePoolFactor)
	}
	if c.ExpandFactor < 1 || c.ExpandMin < 1 {
		return fmt.Errorf("ExpandFactor and ExpandMin must be positive")
	}
	if c.MMRFloorRatio < 0 || c.MMRFloorRatio > 1 {
		return fmt.Errorf("MMRFloorRatio must be in [0, 1], got %f", c.MMRFloorRatio)
	}
	if c.DiversityThreshold < 0 || c.DiversityThreshold > 1 {
		return fmt.Errorf("DiversityThreshold must be in [0, 1], got %f", c.DiversityThreshold)
	}
	if len(c.FragranceFamilies) == 0 {
		return fmt.Errorf("FragranceFamilies must not be empty")
	}
	if c.DefaultPriceTier == "" {
		return fmt.Errorf("DefaultPriceTier must not be empty")
	}
	return nil
}

// ExpandedCount is the oversized per-scorer candidate count for the
// requested result size.
func (c *Config) ExpandedCount(topN int) int {
	n := topN * c.ExpandFactor
	if n < c.ExpandMin {
		n = c.ExpandMin
	}
	return n
}

// FamilyOf classifies text into a scent family by counting keyword
// hits per family. The first family in table order wins ties; no hits
// yields UnclassifiedFamily.
func (c *Config) FamilyOf(text string) string {
	lower := strings.ToLower(text)
	best := UnclassifiedFamily
	bestCount := 0
	for _, fam := range c.FragranceFamilies {
		count := 0
		for _, kw := range fam.Keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			best = fam.Name
			bestCount = count
		}
	}
	return best
}

// TierOf classifies a brand into a price tier by substring match,
// falling back to DefaultPriceTier.
func (c *Config) TierOf(brand string) string {
	lower := strings.ToLower(brand)
	for _, tier := range c.PriceTiers {
		for _, b := range tier.Brands {
			if strings.Contains(lower, b) {
				return tier.Name
			}
		}
	}
	return c.DefaultPriceTier
}

// IsPremiumTier reports whether the tier counts toward premium
// overcrowding.
func (c *Config) IsPremiumTier(tier string) bool {
	for _, t := range c.PremiumTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// PopularPattern returns the first popular-name pattern the perfume
// name matches, or "".
func (c *Config) PopularPattern(name string) string {
	lower := strings.ToLower(name)
	for _, p := range c.PopularNamePatterns {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

// seedFor derives the RNG seed for a request. The default mixes wall
// clock, process identity and a hash of the sorted keywords, so
// repeated identical requests are not guaranteed identical output.
func (c *Config) seedFor(q Query) int64 {
	if c.Seed != nil {
		return c.Seed(q)
	}
	keywords := q.Keywords()
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.Strings(sorted)

	h := fnv.New64a()
	h.Write([]byte(strings.Join(sorted, "|")))

	return time.Now().UnixNano() ^ int64(os.Getpid())<<32 ^ int64(h.Sum64())
}
