package trade

import "strings"

// GameVariant selects which worker pool and which generation/automation
// format a job targets. Values are the canonical lowercase tokens.
type GameVariant string

const (
	VariantSWSH GameVariant = "swsh"
	VariantBDSP GameVariant = "bdsp"
	VariantPLA  GameVariant = "pla"
	VariantLGPE GameVariant = "lgpe"
	VariantSV   GameVariant = "sv"
)

// variantAliases maps historical advertisement spellings onto the canonical
// token. Older workers advertise under the long title names.
var variantAliases = map[string]GameVariant{
	"swordshield":      VariantSWSH,
	"brilliantdiamond": VariantBDSP,
	"arceus":           VariantPLA,
	"letsgo":           VariantLGPE,
	"scvi":             VariantSV,
}

var knownVariants = map[GameVariant]bool{
	VariantSWSH: true,
	VariantBDSP: true,
	VariantPLA:  true,
	VariantLGPE: true,
	VariantSV:   true,
}

// NormalizeVariant maps a raw variant name onto its canonical token.
// Matching is case-insensitive and tolerant of historical spellings.
// It reports false when the name resolves to no known variant.
func NormalizeVariant(name string) (GameVariant, bool) {
	token := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := variantAliases[token]; ok {
		return alias, true
	}
	v := GameVariant(token)
	if knownVariants[v] {
		return v, true
	}
	return "", false
}

// SameVariant reports whether two raw variant names resolve to the same
// canonical token.
func SameVariant(a, b string) bool {
	va, oka := NormalizeVariant(a)
	vb, okb := NormalizeVariant(b)
	return oka && okb && va == vb
}
