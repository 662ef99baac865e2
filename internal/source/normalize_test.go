package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64 // 0 means expect nil
	}{
		{"plain", "12.50", 12.50},
		{"integer", "45", 45},
		{"alibaba range", "US $1.20-3.40", 1.20},
		{"currency prefix", "$9.99", 9.99},
		{"comma decimal", "8,5", 8.5},
		{"empty", "", 0},
		{"garbage", "call for price", 0},
		{"zero", "0", 0},
		{"negative", "-3.50", 3.50}, // sign is not captured; first number wins
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.input)
			if tt.expected == 0 {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
			assert.InDelta(t, tt.expected, *got, 1e-9)
		})
	}
}

func TestParsePriceNumber(t *testing.T) {
	assert.Nil(t, ParsePriceNumber(0))
	assert.Nil(t, ParsePriceNumber(-1.5))
	got := ParsePriceNumber(19.99)
	assert.NotNil(t, got)
	assert.InDelta(t, 19.99, *got, 1e-9)
}

func TestParseMOQ(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"100", 100},
		{"50 pieces", 50},
		{"", 1},
		{"unknown", 1},
		{"0", 1},
		{"2.5", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseMOQ(tt.input), "input %q", tt.input)
	}
}

func TestTitleOrFallback(t *testing.T) {
	assert.Equal(t, "Wireless Earbuds", TitleOrFallback("", "  ", "Wireless Earbuds"))
	assert.Equal(t, "Untitled product", TitleOrFallback("", "   "))
}

func TestIDOrSynthesized(t *testing.T) {
	assert.Equal(t, "p-1", IDOrSynthesized(" p-1 ", "alibaba"))

	synth := IDOrSynthesized("", "alibaba")
	assert.True(t, strings.HasPrefix(synth, "alibaba-"))
	assert.NotEqual(t, synth, IDOrSynthesized("", "alibaba"))
}

func TestCurrencyOrDefault(t *testing.T) {
	assert.Equal(t, "USD", CurrencyOrDefault(""))
	assert.Equal(t, "CNY", CurrencyOrDefault(" cny "))
}

func TestRating(t *testing.T) {
	assert.Nil(t, Rating(0))
	assert.Nil(t, Rating(6))
	assert.NotNil(t, Rating(4.7))
}
