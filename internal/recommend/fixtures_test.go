// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import (
	"testing"

	"github.com/perfumeonme/aromatch/internal/catalog"
)

// testConfig returns a deterministic configuration: no seed
// randomization and a fixed seed for code paths that still ask for one.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.SeedRandomization = false
	cfg.Seed = func(Query) int64 { return 42 }
	return cfg
}

func testTable(t *testing.T) *catalog.Table {
	t.Helper()

	items := []catalog.Item{
		{
			Brand:              "Diptyque",
			Name:               "Philosykos",
			CoreKeywords:       "fig woody green calm",
			Description:        "a fig tree in a calm summer garden",
			TopNoteKeywords:    "fig leaf",
			MiddleNoteKeywords: "coconut green",
			BaseNoteKeywords:   "cedar woody",
			Gender:             "unisex",
			Season:             "summer",
			Place:              "garden",
			ImageURL:           "https://img.example.com/philosykos.png",
		},
		{
			Brand:              "Le Labo",
			Name:               "Santal 33",
			CoreKeywords:       "sandalwood leather smoky warm",
			Description:        "smoky sandalwood with warm leather",
			TopNoteKeywords:    "cardamom violet",
			MiddleNoteKeywords: "iris sandalwood",
			BaseNoteKeywords:   "leather musk",
			Gender:             "unisex",
			Season:             "winter",
			Place:              "city",
		},
		{
			Brand:              "Chanel",
			Name:               "No. 5",
			CoreKeywords:       "aldehyde floral elegant classic",
			Description:        "an elegant classic floral bouquet",
			TopNoteKeywords:    "aldehyde neroli",
			MiddleNoteKeywords: "rose jasmine",
			BaseNoteKeywords:   "vanilla vetiver",
			Gender:             "female",
			Season:             "spring",
			Place:              "evening",
		},
		{
			Brand:              "Chanel",
			Name:               "Bleu de Chanel",
			CoreKeywords:       "fresh citrus woody modern",
			Description:        "fresh citrus over modern woods",
			TopNoteKeywords:    "grapefruit lemon",
			MiddleNoteKeywords: "ginger jasmine",
			BaseNoteKeywords:   "sandalwood cedar",
			Gender:             "male",
			Season:             "summer",
			Place:              "office",
		},
		{
			Brand:              "Byredo",
			Name:               "Gypsy Water",
			CoreKeywords:       "fresh woody vanilla bohemian",
			Description:        "pine needles and vanilla by a campfire",
			TopNoteKeywords:    "bergamot juniper",
			MiddleNoteKeywords: "incense pine",
			BaseNoteKeywords:   "vanilla sandalwood",
			Gender:             "unisex",
			Season:             "autumn",
			Place:              "forest",
		},
		{
			Brand:              "Hermès",
			Name:               "Un Jardin Sur Le Toit",
			CoreKeywords:       "green garden rose fresh",
			Description:        "a rooftop garden after the rain",
			TopNoteKeywords:    "green apple",
			MiddleNoteKeywords: "rose pear",
			BaseNoteKeywords:   "grass moss",
			Gender:             "unisex",
			Season:             "spring",
			Place:              "garden",
		},
	}

	table, excluded := catalog.NewTable(items)
	if excluded != 0 {
		t.Fatalf("fixture excluded %d rows", excluded)
	}
	return table
}

func testQuery() Query {
	return Query{
		Ambience:    "calm",
		Style:       "woody",
		Gender:      "unisex",
		Season:      "summer",
		Personality: "quiet",
	}
}
