// Package brand maps banner codes from inbound order events to the brand
// identity (display name, SMS sender ID) used for outbound messages.
package brand

import "strings"

// Brand is one configured banner.
type Brand struct {
	Code     string
	Name     string
	SenderID string
}

// Registry resolves raw banner codes to brands. Built once at startup,
// read-only afterwards.
type Registry struct {
	byCode      map[string]Brand
	aliases     map[string]string
	defaultCode string
}

// NewRegistry builds a registry. defaultCode names the brand used when a
// document's banner is unrecognized; pass "" to disable the fallback, which
// makes unknown banners a resolution failure.
func NewRegistry(brands []Brand, defaultCode string) *Registry {
	byCode := make(map[string]Brand, len(brands))
	for _, b := range brands {
		byCode[strings.ToUpper(b.Code)] = b
	}
	return &Registry{
		byCode: byCode,
		aliases: map[string]string{
			"BQ": "BQUK",
			"TP": "TRADEPOINT",
			"SF": "SCREWFIX",
		},
		defaultCode: strings.ToUpper(defaultCode),
	}
}

// DefaultBrands returns the production banner set. Sender IDs may be
// overridden through configuration.
func DefaultBrands() []Brand {
	return []Brand{
		{Code: "BQUK", Name: "B&Q", SenderID: "B&Q"},
		{Code: "TRADEPOINT", Name: "TradePoint", SenderID: "TradePoint"},
		{Code: "SCREWFIX", Name: "Screwfix", SenderID: "Screwfix"},
	}
}

// Resolve maps a raw banner code (any case, short alias or full code) to a
// brand. Unrecognized codes fall back to the default brand when one is
// configured; the second return reports whether any brand was found.
func (r *Registry) Resolve(code string) (Brand, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if full, ok := r.aliases[normalized]; ok {
		normalized = full
	}
	if b, ok := r.byCode[normalized]; ok {
		return b, true
	}
	if r.defaultCode != "" {
		if b, ok := r.byCode[r.defaultCode]; ok {
			return b, true
		}
	}
	return Brand{}, false
}

// Known reports whether the code (or alias) names a configured brand,
// ignoring the default fallback.
func (r *Registry) Known(code string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if full, ok := r.aliases[normalized]; ok {
		normalized = full
	}
	_, ok := r.byCode[normalized]
	return ok
}
