package pdf

import (
	"path/filepath"
	"testing"
)

func TestDOIFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "doi line",
			text: "SIAM J. MATRIX ANAL. APPL.\nVol. 34, No. 2, pp. 495–518\nDOI. 10.1137/110820713.\n",
			want: "10.1137/110820713",
		},
		{
			name: "url form",
			text: "Available at https://doi.org/10.1007/BF00119502)",
			want: "10.1007/bf00119502",
		},
		{
			name: "none",
			text: "Abstract. We consider Krylov subspace methods.",
			want: "",
		},
		{
			name: "too short",
			text: "see 10.1/x",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DOIFromText(tt.text); got != tt.want {
				t.Errorf("DOIFromText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleFromText(t *testing.T) {
	text := "Journal of Computational Physics 231 (2012)\n" +
		"Short line\n" +
		"doi:10.1016/j.jcp.2012.01.001 and more text here\n" +
		"A  Framework for Deflated and Augmented Krylov Subspace Methods\n" +
		"A. Gaul, M. H. Gutknecht\n"

	want := "A Framework for Deflated and Augmented Krylov Subspace Methods"
	if got := TitleFromText(text); got != want {
		t.Errorf("TitleFromText() = %q, want %q", got, want)
	}
	if got := TitleFromText("tiny\nlines"); got != "" {
		t.Errorf("TitleFromText() = %q, want empty", got)
	}
}

func TestExtractDOI_MissingFile(t *testing.T) {
	if _, err := ExtractDOI(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
