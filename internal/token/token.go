package token

import "strings"

// Category classifies what kind of design value a token carries.
type Category string

const (
	CategoryColor      Category = "color"
	CategorySpacing    Category = "spacing"
	CategoryTypography Category = "typography"
	CategoryRadius     Category = "radius"
	CategoryShadow     Category = "shadow"
	CategoryMotion     Category = "motion"
	CategoryOpacity    Category = "opacity"
)

// TrustLevel marks how much confidence consumers should place in a token's
// semantic metadata.
type TrustLevel string

const (
	TrustUnverified TrustLevel = "unverified"
	TrustReviewed   TrustLevel = "reviewed"
	TrustCanonical  TrustLevel = "canonical"
)

// Token is a named design value with optional semantic metadata.
//
// The zero CognitiveLoad means "not estimated"; estimated values live in
// [0, 10].
type Token struct {
	Name            string     `json:"name"`
	Category        Category   `json:"category"`
	Value           string     `json:"value"`
	SemanticMeaning string     `json:"semanticMeaning,omitempty"`
	CognitiveLoad   float64    `json:"cognitiveLoad,omitempty"`
	TrustLevel      TrustLevel `json:"trustLevel,omitempty"`
}

// Color parses the token's value as a color. Only meaningful for color
// category tokens, but callers may try it on anything.
func (t Token) Color() (Color, bool) {
	return ParseColor(t.Value)
}

func normalizeCategory(raw string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryColor:
		return CategoryColor, true
	case CategorySpacing:
		return CategorySpacing, true
	case CategoryTypography:
		return CategoryTypography, true
	case CategoryRadius:
		return CategoryRadius, true
	case CategoryShadow:
		return CategoryShadow, true
	case CategoryMotion:
		return CategoryMotion, true
	case CategoryOpacity:
		return CategoryOpacity, true
	}
	return "", false
}

// ParseCategory maps a raw string onto a known category.
func ParseCategory(raw string) (Category, bool) {
	return normalizeCategory(raw)
}
