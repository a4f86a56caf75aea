package trade

import "testing"

func TestNormalizeVariant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  GameVariant
		ok    bool
	}{
		{"CanonicalSWSH", "swsh", VariantSWSH, true},
		{"CanonicalBDSP", "bdsp", VariantBDSP, true},
		{"CanonicalPLA", "pla", VariantPLA, true},
		{"CanonicalLGPE", "lgpe", VariantLGPE, true},
		{"CanonicalSV", "sv", VariantSV, true},
		{"AliasSwordShield", "swordshield", VariantSWSH, true},
		{"AliasBrilliantDiamond", "brilliantdiamond", VariantBDSP, true},
		{"AliasArceus", "arceus", VariantPLA, true},
		{"AliasLetsGo", "letsgo", VariantLGPE, true},
		{"AliasScVi", "scvi", VariantSV, true},
		{"UpperCase", "SWSH", VariantSWSH, true},
		{"MixedCaseAlias", "SwordShield", VariantSWSH, true},
		{"SurroundingSpace", "  pla  ", VariantPLA, true},
		{"Unknown", "emerald", "", false},
		{"Empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeVariant(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("NormalizeVariant(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSameVariant(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"CanonicalPair", "swsh", "swsh", true},
		{"AliasMatchesCanonical", "swordshield", "swsh", true},
		{"CaseInsensitive", "SV", "scvi", true},
		{"DifferentVariants", "swsh", "bdsp", false},
		{"UnknownLeft", "emerald", "swsh", false},
		{"BothUnknown", "x", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameVariant(tt.a, tt.b); got != tt.want {
				t.Errorf("SameVariant(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
