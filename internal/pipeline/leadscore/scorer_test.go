package leadscore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestInferSignals_IntentRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"investment", "what kind of returns can I expect on a plot", IntentInvestment},
		{"stay", "do you have a room for this weekend", IntentStay},
		{"experience", "is there a forest trek I can join", IntentExperience},
		{"partnership", "we would like to collaborate with you", IntentPartnership},
		{"community", "how does the collective work", IntentCommunity},
		{"general fallback", "hello there", IntentGeneral},
		{"investment wins over stay", "can I invest in a farm stay", IntentInvestment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferSignals(tt.text, testNow)
			assert.Equal(t, tt.want, got.Intent)
		})
	}
}

func TestInferSignals_ScoreComponents(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"base only", "hello there", 25},
		{"question mark", "hello there?", 35},
		{"purchase keyword", "I want to buy", 50},
		{"urgency keyword", "need it today", 40},
		{"low intent", "just browsing here", 15},
		{"question plus purchase plus urgency", "Can I book a stay today?", 75},
		{"never below zero", "just browsing just curious", 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferSignals(tt.text, testNow)
			assert.Equal(t, tt.want, got.Score)
			assert.GreaterOrEqual(t, got.Score, 0)
			assert.LessOrEqual(t, got.Score, 100)
		})
	}
}

func TestInferSignals_StageLadder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Stage
	}{
		{"default awareness", "hello", StageAwareness},
		{"informational", "tell me more please", StageConsideration},
		{"booking overrides informational", "tell me how to schedule it", StageIntent},
		{"conversion wins last", "I have paid, what details do you need to book me in", StageConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferSignals(tt.text, testNow)
			assert.Equal(t, tt.want, got.Stage)
		})
	}
}

func TestInferSignals_FollowUpDelay(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantHours int
	}{
		{"hot lead gets 4h", "Can I book a stay today?", 4},
		{"intent stage gets 4h regardless of score", "let me schedule a visit", 4},
		{"warm lead gets 12h", "what does it cost", 12},
		{"cold lead gets 24h", "hello", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferSignals(tt.text, testNow)
			assert.Equal(t, tt.wantHours, got.FollowUpDelayHours)
			wantAt := testNow.Add(time.Duration(tt.wantHours) * time.Hour).UnixMilli()
			assert.Equal(t, wantAt, got.FollowUpAt)
		})
	}
}

func TestApplyAudienceBoosts(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		verified  bool
		followers int
		want      int
	}{
		{"no boosts", 40, false, 0, 40},
		{"verified adds ten", 40, true, 0, 50},
		{"ten k tier", 40, false, 12000, 55},
		{"three k tier", 40, false, 5000, 48},
		{"tiers are exclusive", 40, false, 25000, 55},
		{"hot lead with large following", 75, false, 12000, 90},
		{"clamped at hundred", 95, true, 12000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyAudienceBoosts(tt.score, tt.verified, tt.followers))
		})
	}
}
