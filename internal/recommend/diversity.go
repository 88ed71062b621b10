// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"context"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/perfumeonme/aromatch/internal/catalog"
	"github.com/perfumeonme/aromatch/internal/logging"
	"github.com/perfumeonme/aromatch/internal/metrics"
)

// Selector re-ranks fused candidates with a Maximal-Marginal-Relevance
// pass: each pick trades raw relevance against redundancy with the
// already selected set. A brand quota pre-filter runs first so no
// single brand can dominate the pool, and a post-hoc validation can
// trigger a semantic-only alternative pass when the final set is still
// too uniform.
type Selector struct {
	cfg *Config

	// alternatives supplies extra candidates for the re-recommendation
	// pass; in production this is the semantic scorer. May be nil.
	alternatives Scorer

	logger zerolog.Logger
}

// NewSelector creates a Selector.
func NewSelector(cfg *Config, alternatives Scorer) *Selector {
	return &Selector{
		cfg:          cfg,
		alternatives: alternatives,
		logger:       logging.With().Str("component", "recommend.diversity").Logger(),
	}
}

// Diversify picks at most topN candidates from the sorted candidate
// list. Returned similarities are the MMR-adjusted scores: never above
// the candidate's incoming score and never below MMRFloorRatio of it.
func (s *Selector) Diversify(ctx context.Context, q Query, candidates []Candidate, topN int) ([]Candidate, DiversityDiagnostics) {
	diag := DiversityDiagnostics{}
	if topN <= 0 || len(candidates) == 0 {
		return nil, diag
	}

	pool := s.brandQuotaPool(dedupe(candidates), topN)

	var rng *rand.Rand
	if s.cfg.SeedRandomization {
		diag.Seed = s.cfg.seedFor(q)
		rng = rand.New(rand.NewSource(diag.Seed))
	}

	selected := s.selectMMR(pool, topN, rng)

	diag.Score = s.compositeDiversity(selected)
	if diag.Score < s.cfg.DiversityThreshold && len(selected) >= 2 {
		if alt, ok := s.alternativePass(ctx, q, selected, topN); ok {
			selected = alt
			diag.Score = s.compositeDiversity(selected)
			diag.AlternativeUsed = true
		}
	}

	return selected, diag
}

func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[catalog.Key]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Key]; dup {
			continue
		}
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// brandQuotaPool caps each brand at max(1, topN/2) picks and fills a
// pool of size CandidatePoolFactor×topN round-robin across brands in
// first-appearance order. Candidates squeezed out by the quota backfill
// the pool in original score order, so a single-brand catalog still
// yields a full pool.
func (s *Selector) brandQuotaPool(candidates []Candidate, topN int) []Candidate {
	poolSize := topN * s.cfg.CandidatePoolFactor
	if poolSize >= len(candidates) {
		return candidates
	}

	quota := topN / 2
	if quota < 1 {
		quota = 1
	}

	var brandOrder []string
	byBrand := make(map[string][]Candidate)
	for _, c := range candidates {
		if _, ok := byBrand[c.Brand]; !ok {
			brandOrder = append(brandOrder, c.Brand)
		}
		byBrand[c.Brand] = append(byBrand[c.Brand], c)
	}

	pool := make([]Candidate, 0, poolSize)
	taken := make(map[catalog.Key]struct{}, poolSize)
	for round := 0; round < quota && len(pool) < poolSize; round++ {
		for _, brand := range brandOrder {
			if len(pool) >= poolSize {
				break
			}
			queue := byBrand[brand]
			if round >= len(queue) {
				continue
			}
			c := queue[round]
			pool = append(pool, c)
			taken[c.Key] = struct{}{}
		}
	}

	// Overflow backfill in original score order.
	for _, c := range candidates {
		if len(pool) >= poolSize {
			break
		}
		if _, ok := taken[c.Key]; ok {
			continue
		}
		pool = append(pool, c)
		taken[c.Key] = struct{}{}
	}

	// The round-robin interleaves brands; restore score order so the
	// seed pick still favors the strongest candidates.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Similarity > pool[j].Similarity
	})

	return pool
}

// selectMMR runs the iterative MMR selection loop over the pool.
func (s *Selector) selectMMR(pool []Candidate, topN int, rng *rand.Rand) []Candidate {
	if len(pool) == 0 {
		return nil
	}

	remaining := make([]Candidate, len(pool))
	copy(remaining, pool)
	features := make(map[catalog.Key]*candidateFeatures, len(pool))
	for _, c := range pool {
		features[c.Key] = s.featuresOf(c)
	}

	selected := make([]Candidate, 0, topN)

	// Seed pick: uniform among the top 3 when randomized, else the
	// single best. The pool is score-sorted, so index 0 is the best.
	seedIdx := 0
	if rng != nil {
		span := 3
		if len(remaining) < span {
			span = len(remaining)
		}
		seedIdx = rng.Intn(span)
	}
	selected = append(selected, remaining[seedIdx])
	remaining = append(remaining[:seedIdx], remaining[seedIdx+1:]...)

	for len(selected) < topN && len(remaining) > 0 {
		// Diversity matters more as the result set fills up.
		adaptive := s.cfg.DiversityWeight * (1 + 0.5*float64(len(selected)))

		mmrScores := make([]float64, len(remaining))
		for i, c := range remaining {
			penalty := s.diversityPenalty(features[c.Key], selected, features)
			mmr := c.Similarity - adaptive*penalty
			floor := s.cfg.MMRFloorRatio * c.Similarity
			if c.Similarity > 0 && mmr < floor {
				mmr = floor
			}
			mmrScores[i] = mmr
		}

		pick := s.pick(mmrScores, rng)
		chosen := remaining[pick]
		chosen.Similarity = mmrScores[pick]
		selected = append(selected, chosen)
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	return selected
}

// pick chooses the next candidate index: a weighted-random draw among
// the top 3 MMR scores when randomized, otherwise the single best.
func (s *Selector) pick(mmrScores []float64, rng *rand.Rand) int {
	best := 0
	for i, score := range mmrScores {
		if score > mmrScores[best] {
			best = i
		}
	}
	if rng == nil {
		return best
	}

	type ranked struct {
		idx   int
		score float64
	}
	top := make([]ranked, 0, len(mmrScores))
	for i, score := range mmrScores {
		top = append(top, ranked{idx: i, score: score})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].score > top[j].score })
	if len(top) > 3 {
		top = top[:3]
	}

	total := 0.0
	for _, r := range top {
		if r.score > 0 {
			total += r.score
		}
	}
	if total <= 0 {
		return top[rng.Intn(len(top))].idx
	}

	draw := rng.Float64() * total
	for _, r := range top {
		if r.score <= 0 {
			continue
		}
		draw -= r.score
		if draw <= 0 {
			return r.idx
		}
	}
	return top[len(top)-1].idx
}

// candidateFeatures caches the per-candidate attributes the penalty
// signals compare.
type candidateFeatures struct {
	brand             string
	top, middle, base map[string]struct{}
	description       map[string]struct{}
	matched           map[string]struct{}
	family            string
	tier              string
	pattern           string
	premium           bool
}

func (s *Selector) featuresOf(c Candidate) *candidateFeatures {
	f := &candidateFeatures{
		brand:       c.Brand,
		top:         WordSet(c.TopNote),
		middle:      WordSet(c.MiddleNote),
		base:        WordSet(c.BaseNote),
		description: WordSet(c.Description),
		matched:     make(map[string]struct{}, len(c.RelatedKeywords)),
		family:      s.cfg.FamilyOf(c.NoteText() + " " + c.Description),
		tier:        s.cfg.TierOf(c.Brand),
		pattern:     s.cfg.PopularPattern(c.Name),
	}
	for _, kw := range c.RelatedKeywords {
		f.matched[kw] = struct{}{}
	}
	f.premium = s.cfg.IsPremiumTier(f.tier)
	return f
}

// Penalty signal weights. Each signal contributes independently; the
// sum is scaled by the adaptive diversity weight in the MMR formula.
const (
	brandRepeatUnit      = 0.25
	noteOverlapWeight    = 0.4
	noteOverlapThreshold = 0.3
	descOverlapWeight    = 0.3
	descOverlapThreshold = 0.25
	matchedKeywordWeight = 0.25
	matchedJaccardLimit  = 0.5
	matchedSharedLimit   = 2
	premiumCrowdWeight   = 0.2
	premiumCrowdLimit    = 2
	popularPatternWeight = 0.15
	familyRepeatUnit     = 0.15
	tierRepeatUnit       = 0.1
)

// diversityPenalty sums the seven redundancy signals of a candidate
// against the already selected set.
func (s *Selector) diversityPenalty(cand *candidateFeatures, selected []Candidate, features map[catalog.Key]*candidateFeatures) float64 {
	penalty := 0.0

	brandRepeats := 0
	familyRepeats := 0
	tierRepeats := 0
	premiumCount := 0

	for _, sel := range selected {
		sf := features[sel.Key]
		if sf == nil {
			sf = s.featuresOf(sel)
			features[sel.Key] = sf
		}

		if cand.brand != "" && sf.brand == cand.brand {
			brandRepeats++
		}
		if sf.family == cand.family && cand.family != UnclassifiedFamily {
			familyRepeats++
		}
		if sf.tier == cand.tier {
			tierRepeats++
		}
		if sf.premium {
			premiumCount++
		}

		// Note-set overlap, top and middle notes weighted above base.
		noteOverlap := 0.4*Jaccard(cand.top, sf.top) +
			0.4*Jaccard(cand.middle, sf.middle) +
			0.2*Jaccard(cand.base, sf.base)
		if noteOverlap > noteOverlapThreshold {
			penalty += noteOverlap * noteOverlapWeight
		}

		if ratio := OverlapRatio(cand.description, sf.description); ratio > descOverlapThreshold {
			penalty += ratio * descOverlapWeight
		}

		shared := CommonWords(cand.matched, sf.matched)
		if Jaccard(cand.matched, sf.matched) > matchedJaccardLimit || shared >= matchedSharedLimit {
			penalty += matchedKeywordWeight
		}

		if cand.pattern != "" && sf.pattern == cand.pattern {
			penalty += popularPatternWeight
		}
	}

	// Brand repetition grows quadratically, one repeat is tolerable
	// but a third pick from the same house is heavily suppressed.
	penalty += brandRepeatUnit * float64(brandRepeats*brandRepeats)
	penalty += familyRepeatUnit * float64(familyRepeats)
	penalty += tierRepeatUnit * float64(tierRepeats)

	if cand.premium && premiumCount >= premiumCrowdLimit {
		penalty += premiumCrowdWeight
	}

	return penalty
}

// compositeDiversity scores how varied a result set is: a weighted sum
// of uniqueness ratios over brands, note words, description words,
// scent families and price tiers. The aggregate is permutation
// invariant.
func (s *Selector) compositeDiversity(results []Candidate) float64 {
	n := len(results)
	if n == 0 {
		return 0
	}

	brands := make(map[string]struct{}, n)
	families := make(map[string]struct{}, n)
	tiers := make(map[string]struct{}, n)
	noteWords := make(map[string]struct{})
	descWords := make(map[string]struct{})
	noteTotal := 0
	descTotal := 0

	for _, r := range results {
		brands[r.Brand] = struct{}{}
		families[s.cfg.FamilyOf(r.NoteText()+" "+r.Description)] = struct{}{}
		tiers[s.cfg.TierOf(r.Brand)] = struct{}{}

		ns := WordSet(r.NoteText())
		noteTotal += len(ns)
		for w := range ns {
			noteWords[w] = struct{}{}
		}
		ds := WordSet(r.Description)
		descTotal += len(ds)
		for w := range ds {
			descWords[w] = struct{}{}
		}
	}

	ratio := func(unique, total int) float64 {
		if total == 0 {
			return 1
		}
		return float64(unique) / float64(total)
	}

	return 0.3*ratio(len(brands), n) +
		0.25*ratio(len(noteWords), noteTotal) +
		0.2*ratio(len(descWords), descTotal) +
		0.15*ratio(len(families), n) +
		0.1*ratio(len(tiers), n)
}

// alternativePass re-queries the semantic scorer for a larger pool,
// keeps only brands absent from the current set, backfills with the
// original results, and accepts the alternative only when its
// composite diversity is strictly higher.
func (s *Selector) alternativePass(ctx context.Context, q Query, current []Candidate, topN int) ([]Candidate, bool) {
	if s.alternatives == nil {
		return nil, false
	}

	altSet, err := s.alternatives.Score(ctx, q, topN*s.cfg.CandidatePoolFactor)
	if err != nil {
		s.logger.Warn().Err(err).Msg("alternative diversity pass failed")
		return nil, false
	}

	usedBrands := make(map[string]struct{}, len(current))
	for _, c := range current {
		usedBrands[c.Brand] = struct{}{}
	}

	alt := make([]Candidate, 0, topN)
	seen := make(map[catalog.Key]struct{}, topN)
	for _, c := range altSet.Results {
		if len(alt) >= topN {
			break
		}
		if _, used := usedBrands[c.Brand]; used {
			continue
		}
		if _, dup := seen[c.Key]; dup {
			continue
		}
		seen[c.Key] = struct{}{}
		alt = append(alt, c)
	}

	for _, c := range current {
		if len(alt) >= topN {
			break
		}
		if _, dup := seen[c.Key]; dup {
			continue
		}
		seen[c.Key] = struct{}{}
		alt = append(alt, c)
	}

	currentScore := s.compositeDiversity(current)
	altScore := s.compositeDiversity(alt)
	if altScore <= currentScore {
		return nil, false
	}

	metrics.DiversityRetries.Inc()
	s.logger.Info().
		Float64("original_score", currentScore).
		Float64("alternative_score", altScore).
		Msg("alternative pass produced a more diverse set")

	return alt, true
}
