// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package persona maps an eight-question scent-habit quiz onto four
// personality axes and recommends perfumes for the resulting profile.
//
// Each axis is voted by two questions; a marker phrase in the chosen
// answer scores one point for its pole. Equal votes leave the axis
// balanced, which the type code records as both letters, so a code is
// four to eight characters (for example "ESTJ" or "EISNTFJP").
package persona

import "strings"

// Answers holds the raw answer text of the eight quiz questions in
// order. Q1 and Q2 vote the E/I axis, Q3 and Q4 S/N, Q5 and Q6 T/F,
// Q7 and Q8 J/P.
type Answers [8]string

// axisVote describes one question's contribution to an axis: a marker
// phrase in the answer scores its pole.
type axisVote struct {
	question int
	first    []string
	second   []string
}

// axis pairs the pole letters with the questions that vote on them.
type axis struct {
	first, second string
	votes         []axisVote
}

var axes = []axis{
	{first: "E", second: "I", votes: []axisVote{
		{question: 0,
			first:  []string{"straight away", "right after waking"},
			second: []string{"towel first", "dry off before"}},
		{question: 1,
			first:  []string{"press the button", "spray it into the air"},
			second: []string{"halfway", "step off early"}},
	}},
	{first: "S", second: "N", votes: []axisVote{
		{question: 2,
			first:  []string{"like an alarm", "ahead of time"},
			second: []string{"once the bus arrives", "dig it out of my bag"}},
		{question: 3,
			first:  []string{"just before the light changes", "spray right there"},
			second: []string{"wait it out", "once the scent fades"}},
	}},
	{first: "T", second: "F", votes: []axisVote{
		{question: 4,
			first:  []string{"fill the room", "spread it around"},
			second: []string{"match my mood", "every time I rinse"}},
		{question: 5,
			first:  []string{"on the leash", "a light touch"},
			second: []string{"on my wrist", "layer it"}},
	}},
	{first: "J", second: "P", votes: []axisVote{
		{question: 6,
			first:  []string{"reach for the remote", "flip through channels"},
			second: []string{"when the ads come on", "once I'm sure"}},
		{question: 7,
			first:  []string{"over the duvet", "let the trail settle"},
			second: []string{"from the center", "a few quick dabs"}},
	}},
}

var traitDescriptions = map[string]string{
	"E":  "They are outgoing, energized by social interactions, and tend to enjoy dynamic environments.",
	"I":  "They are introspective, enjoy solitude, and recharge through personal reflection.",
	"EI": "They show a blend of extroversion and introversion, able to engage socially but also value time alone.",

	"S":  "They are grounded in reality, detail-focused, and prefer concrete facts and practical experiences.",
	"N":  "They are imaginative, future-oriented, and enjoy exploring abstract ideas and possibilities.",
	"SN": "They balance practicality with imagination, relying on both details and big-picture thinking.",

	"T":  "They value logic and objective reasoning, often making decisions based on facts.",
	"F":  "They prioritize emotions and empathy, and often consider values when making choices.",
	"TF": "They consider both logic and emotion in decision-making, weighing reason and compassion together.",

	"J":  "They prefer structure, planning, and clear expectations, feeling comfortable with schedules.",
	"P":  "They enjoy flexibility, spontaneity, and are comfortable adapting to changing situations.",
	"JP": "They embody both structure and adaptability, capable of planning while staying flexible.",
}

// keywordPhrases holds the per-axis phrase for [first wins, second
// wins, balanced].
var keywordPhrases = [4][3]string{
	{"you with a bright first impression", "you with quiet focus", "you balancing outgoing and inward moments"},
	{"you attuned to every sensation", "you led by intuition", "you moving between sense and instinct"},
	{"you who misses no detail", "you who puts feeling first", "you weaving thought and emotion together"},
	{"you who moves ahead of time", "you who savors the moment", "you where planning and spontaneity coexist"},
}

func containsAny(answer string, markers []string) bool {
	lower := strings.ToLower(answer)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// scoreAxis returns the first-pole and second-pole vote counts.
func scoreAxis(a Answers, ax axis) (int, int) {
	first, second := 0, 0
	for _, v := range ax.votes {
		if containsAny(a[v.question], v.first) {
			first++
		}
		if containsAny(a[v.question], v.second) {
			second++
		}
	}
	return first, second
}

// TypeCode derives the personality type code from the answers. A
// balanced axis contributes both of its letters.
func TypeCode(a Answers) string {
	var b strings.Builder
	for _, ax := range axes {
		first, second := scoreAxis(a, ax)
		switch {
		case first > second:
			b.WriteString(ax.first)
		case second > first:
			b.WriteString(ax.second)
		default:
			b.WriteString(ax.first)
			b.WriteString(ax.second)
		}
	}
	return b.String()
}

// BuildUserDescription renders the trait sentences for a type code.
// Balanced axes use the blended description.
func BuildUserDescription(code string) string {
	parts := make([]string, 0, 4)
	for _, ax := range axes {
		hasFirst := strings.Contains(code, ax.first)
		hasSecond := strings.Contains(code, ax.second)
		switch {
		case hasFirst && hasSecond:
			parts = append(parts, traitDescriptions[ax.first+ax.second])
		case hasFirst:
			parts = append(parts, traitDescriptions[ax.first])
		case hasSecond:
			parts = append(parts, traitDescriptions[ax.second])
		}
	}
	return "This person shows the following traits: " + strings.Join(parts, " ")
}

// KeywordPhrases returns the four descriptive phrases, one per axis.
func KeywordPhrases(a Answers) []string {
	phrases := make([]string, 0, 4)
	for i, ax := range axes {
		first, second := scoreAxis(a, ax)
		switch {
		case first > second:
			phrases = append(phrases, keywordPhrases[i][0])
		case second > first:
			phrases = append(phrases, keywordPhrases[i][1])
		default:
			phrases = append(phrases, keywordPhrases[i][2])
		}
	}
	return phrases
}
