package textnorm

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Krylov Subspace Methods", "krylov subspace methods"},
		{"accents", "Jörg Liesen", "jorg liesen"},
		{"latex accent", `J{\"o}rg`, "jorg"},
		{"latex letter", `Gau{\ss}`, "gauss"},
		{"braces", "{STD 42}: {A} Standard", "std 42 a standard"},
		{"punctuation", "Boundary-Layer Meteorology.", "boundary layer meteorology"},
		{"emph", `\emph{in vivo} studies`, "in vivo studies"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.input); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("A Framework for Deflated and Augmented Krylov Subspace Methods")
	want := []string{"framework", "deflated", "augmented", "krylov", "subspace", "methods"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestStripBraces(t *testing.T) {
	if got := StripBraces("{IP} over {Ethernet}"); got != "IP over Ethernet" {
		t.Errorf("StripBraces() = %q", got)
	}
}
