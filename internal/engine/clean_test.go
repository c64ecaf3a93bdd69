package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"corporate prefix stripped", "株式会社セブンイレブン", "セブンイレブン"},
		{"corporate suffix stripped", "セブンイレブン 株式会社", "セブンイレブン"},
		{"limited company prefix stripped", "有限会社やまだ商店", "やまだ商店"},
		{"llc suffix stripped", "やまだ商店　合同会社", "やまだ商店"},
		{"filler glyphs deleted without splitting", "Apple＊Com・Bill※", "AppleComBill"},
		{"interpunct keeps joined names joined", "ユニクロ・ＧＵ", "ユニクロＧＵ"},
		{"whitespace collapsed", "  PAYPAL   STEAM  ", "PAYPAL STEAM"},
		{"plain name untouched", "netflix.com", "netflix.com"},
		{"only noise yields empty", "株式会社", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanMerchantName(tt.raw))
		})
	}
}
