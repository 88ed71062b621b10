// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package models

// RecommendationRequest carries the five mood keywords of a
// recommendation query. TopN is optional; zero selects the server
// default.
//
// Example:
//
//	{
//	  "ambience": "calm",
//	  "style": "woody",
//	  "gender": "unisex",
//	  "season": "summer",
//	  "personality": "quiet",
//	  "top_n": 3
//	}
type RecommendationRequest struct {
	Ambience    string `json:"ambience" validate:"required,min=1,max=100"`
	Style       string `json:"style" validate:"required,min=1,max=100"`
	Gender      string `json:"gender" validate:"required,min=1,max=100"`
	Season      string `json:"season" validate:"required,min=1,max=100"`
	Personality string `json:"personality" validate:"required,min=1,max=100"`
	TopN        int    `json:"top_n" validate:"omitempty,min=1,max=20"`
}

// PersonaRequest carries the eight quiz answers of a persona analysis,
// in question order.
type PersonaRequest struct {
	QOne   string `json:"qOne" validate:"required,max=500"`
	QTwo   string `json:"qTwo" validate:"required,max=500"`
	QThree string `json:"qThree" validate:"required,max=500"`
	QFour  string `json:"qFour" validate:"required,max=500"`
	QFive  string `json:"qFive" validate:"required,max=500"`
	QSix   string `json:"qSix" validate:"required,max=500"`
	QSeven string `json:"qSeven" validate:"required,max=500"`
	QEight string `json:"qEight" validate:"required,max=500"`
}

// Answers returns the answers in question order.
func (r PersonaRequest) Answers() [8]string {
	return [8]string{r.QOne, r.QTwo, r.QThree, r.QFour, r.QFive, r.QSix, r.QSeven, r.QEight}
}
