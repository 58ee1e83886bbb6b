// Package leadscore derives sales-intent signals from raw message text.
// Everything here is deterministic keyword matching; the sets and their check
// order are part of the observable contract, so changes ripple into funnel
// automation downstream.
package leadscore

import (
	"strings"
	"time"
)

// Intent is the topic a message is about.
type Intent string

const (
	IntentInvestment  Intent = "investment"
	IntentStay        Intent = "stay"
	IntentExperience  Intent = "experience"
	IntentPartnership Intent = "partnership"
	IntentCommunity   Intent = "community"
	IntentGeneral     Intent = "general"
)

// Stage is the funnel stage the message suggests.
type Stage string

const (
	StageAwareness     Stage = "awareness"
	StageConsideration Stage = "consideration"
	StageIntent        Stage = "intent"
	StageConversion    Stage = "conversion"
)

// Signal is the derived intent/score/stage triple plus the follow-up slot.
type Signal struct {
	Intent             Intent
	Score              int
	Stage              Stage
	FollowUpDelayHours int
	FollowUpAt         int64 // epoch ms
}

const baseScore = 25

// Intent rules, first match wins, checked in this order.
var intentRules = []struct {
	intent   Intent
	keywords []string
}{
	{IntentInvestment, []string{"invest", "roi", "returns", "acre", "land parcel", "plot", "own a farm", "ownership"}},
	{IntentStay, []string{"stay", "accommodation", "room", "night", "getaway", "weekend"}},
	{IntentExperience, []string{"experience", "trek", "trail", "workshop", "tour", "activity", "walk"}},
	{IntentPartnership, []string{"partner", "collaborat", "tie-up", "vendor", "reseller"}},
	{IntentCommunity, []string{"community", "collective", "member", "co-own", "joint farming"}},
}

var (
	purchaseKeywords = []string{"buy", "purchase", "book", "price", "cost", "order", "sign up", "invest"}
	urgencyKeywords  = []string{"today", "tonight", "right now", "urgent", "asap", "immediately", "this week"}
	lowIntentKeywords = []string{"just curious", "just browsing", "just asking", "no plans", "someday", "random"}
)

var (
	informationalKeywords = []string{"what", "how", "tell me", "details", "info", "learn", "about", "know more"}
	bookingKeywords       = []string{"book", "schedule", "visit", "reserve", "call", "appointment", "slot"}
	conversionKeywords    = []string{"paid", "payment done", "booked", "purchased", "confirmed", "transferred"}
)

// InferSignals derives a Signal from the message text alone. Audience boosts
// from sender metadata are applied separately by the caller.
func InferSignals(text string, now time.Time) Signal {
	lower := strings.ToLower(text)

	intent := IntentGeneral
	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			intent = rule.intent
			break
		}
	}

	score := baseScore
	if strings.Contains(lower, "?") {
		score += 10
	}
	if containsAny(lower, purchaseKeywords) {
		score += 25
	}
	if containsAny(lower, urgencyKeywords) {
		score += 15
	}
	if containsAny(lower, lowIntentKeywords) {
		score -= 10
	}
	score = clamp(score)

	// Stage ladder: the three tests run in order and the last match wins.
	stage := StageAwareness
	if containsAny(lower, informationalKeywords) {
		stage = StageConsideration
	}
	if containsAny(lower, bookingKeywords) {
		stage = StageIntent
	}
	if containsAny(lower, conversionKeywords) {
		stage = StageConversion
	}

	delayHours := 24
	switch {
	case score >= 70 || stage == StageIntent:
		delayHours = 4
	case score >= 50:
		delayHours = 12
	}

	return Signal{
		Intent:             intent,
		Score:              score,
		Stage:              stage,
		FollowUpDelayHours: delayHours,
		FollowUpAt:         now.Add(time.Duration(delayHours) * time.Hour).UnixMilli(),
	}
}

// ApplyAudienceBoosts folds sender metadata into the score. The follower
// tiers are mutually exclusive; only the higher one applies.
func ApplyAudienceBoosts(score int, verified bool, followers int) int {
	if verified {
		score += 10
	}
	switch {
	case followers >= 10000:
		score += 15
	case followers >= 3000:
		score += 8
	}
	return clamp(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
