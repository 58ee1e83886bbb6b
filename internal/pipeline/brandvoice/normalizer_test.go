package brandvoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeDomains_Aliases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "www alias",
			in:   "check www.beforest.in for info",
			want: "check beforest.co for info",
		},
		{
			name: "org alias",
			in:   "visit beforest.org now",
			want: "visit beforest.co now",
		},
		{
			name: "case insensitive",
			in:   "see Beforest.COM today",
			want: "see beforest.co today",
		},
		{
			name: "bewild alias",
			in:   "shop at bewild.in",
			want: "shop at bewild.life",
		},
		{
			name: "unknown tld rewritten by pattern",
			in:   "try beforest.xyz maybe",
			want: "try beforest.co maybe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalizeDomains(tt.in))
		})
	}
}

func TestCanonicalizeDomains_CanonicalPassThrough(t *testing.T) {
	for _, d := range CanonicalDomains {
		in := "details at " + d + " here"
		assert.Equal(t, in, CanonicalizeDomains(in))
	}
}

func TestHumanizeVoice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips research meta",
			in:   "Based on my research, Coorg spans 128 acres.",
			want: "Coorg spans 128 acres.",
		},
		{
			name: "knowledge base rewritten",
			in:   "Our knowledge base lists four collectives.",
			want: "Our current details lists four collectives.",
		},
		{
			name: "assistant phrasing removed",
			in:   "As an AI assistant, I can say we host farm stays.",
			want: "I can say we host farm stays.",
		},
		{
			name: "whitespace repaired after removal",
			in:   "The stay costs 4000 , based on my research .",
			want: "The stay costs 4000,.",
		},
		{
			name: "plain text untouched",
			in:   "We host farm stays in Coorg.",
			want: "We host farm stays in Coorg.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanizeVoice(tt.in))
		})
	}
}

func TestNormalizeDashes(t *testing.T) {
	assert.Equal(t, "a - b - c", NormalizeDashes("a – b — c"))
}

func TestApplyNoInfoOverride(t *testing.T) {
	t.Run("bewild product question with hedge gets override", func(t *testing.T) {
		got := ApplyNoInfoOverride(
			"what products does bewild have",
			"I couldn't find anything about that.",
		)
		assert.Equal(t, bewildNoInfoReply, got)
	})

	t.Run("confident answer passes through", func(t *testing.T) {
		answer := "Bewild stocks Rosella infusion and forest honey."
		got := ApplyNoInfoOverride("what products does bewild have", answer)
		assert.Equal(t, answer, got)
	})

	t.Run("hedge without brand passes through", func(t *testing.T) {
		answer := "I couldn't find anything about that."
		got := ApplyNoInfoOverride("what products do you have", answer)
		assert.Equal(t, answer, got)
	})

	t.Run("brand without product ask passes through", func(t *testing.T) {
		answer := "I couldn't find anything about that."
		got := ApplyNoInfoOverride("where is bewild grown", answer)
		assert.Equal(t, answer, got)
	})
}

func TestPolish_FullSequence(t *testing.T) {
	got := Polish(
		"tell me about coorg",
		"Based on my research, Coorg — our oldest collective — is listed on beforest.org.",
	)
	assert.Equal(t, "Coorg - our oldest collective - is listed on beforest.co.", got)
}
