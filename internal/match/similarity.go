package match

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/hbollon/go-edlib"

	"github.com/matsen/betterbib/internal/journal"
	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/textnorm"
)

// tokenThreshold is the Jaro-Winkler similarity at which two title tokens
// count as the same word. It absorbs typos and British/American spelling.
const tokenThreshold = 0.9

// nameThreshold is the Jaro-Winkler similarity at which two folded family
// names count as the same person.
const nameThreshold = 0.9

func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	return err == nil && sim >= tokenThreshold
}

// matchedFraction returns the share of tokens in xs that match some token in ys.
func matchedFraction(xs, ys []string) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	for _, x := range xs {
		for _, y := range ys {
			if tokensMatch(x, y) {
				n++
				break
			}
		}
	}
	return float64(n) / float64(len(xs))
}

// TitleSimilarity scores how well a candidate title covers the input title.
// Recall (input words found in the candidate) weighs double precision, so
// candidates that add a subtitle are only mildly penalized.
func TitleSimilarity(input, candidate string) float64 {
	in := textnorm.Tokens(input)
	cand := textnorm.Tokens(candidate)
	if len(in) == 0 || len(cand) == 0 {
		return 0
	}
	recall := matchedFraction(in, cand)
	precision := matchedFraction(cand, in)
	return (2*recall + precision) / 3
}

// titleScore compares the input title against the candidate title, with
// and without the candidate subtitle, and keeps the better score.
func titleScore(input, cand *reference.Entry) float64 {
	title := cand.Get("title")
	if title == "" {
		return 0
	}
	score := TitleSimilarity(input.Get("title"), title)
	if sub := cand.Get("subtitle"); sub != "" {
		score = max(score, TitleSimilarity(input.Get("title"), title+" "+sub))
	}
	return score
}

func foldedFamilyNames(people []reference.Person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		if n := textnorm.Fold(p.FamilyName()); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// AuthorOverlap returns the fraction of the input's family names that
// appear among the candidate's. It is 0 when the input has no authors.
func AuthorOverlap(input, cand *reference.Entry) float64 {
	want := foldedFamilyNames(input.Authors())
	if len(want) == 0 {
		return 0
	}
	have := foldedFamilyNames(cand.Authors())
	jw := metrics.NewJaroWinkler()
	found := 0
	for _, w := range want {
		for _, h := range have {
			if w == h || strutil.Similarity(w, h, jw) >= nameThreshold {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(want))
}

// ContainerSimilarity compares journal or proceedings names. A known
// abbreviation and its full name are identical.
func ContainerSimilarity(a, b string) float64 {
	fa, fb := textnorm.Fold(a), textnorm.Fold(b)
	if fa == "" || fb == "" {
		return 0
	}
	if fa == fb {
		return 1
	}
	if dict, err := journal.Default(); err == nil && dict.Same(a, b) {
		return 1
	}
	return strutil.Similarity(fa, fb, metrics.NewSorensenDice())
}

// metadataScore is the primary score for entries without a title: author
// overlap times container similarity, each over what the input supplies.
func metadataScore(input, cand *reference.Entry) float64 {
	score := 1.0
	supplied := false
	if len(input.Authors()) > 0 {
		score *= AuthorOverlap(input, cand)
		supplied = true
	}
	if c := input.Container(); c != "" {
		score *= ContainerSimilarity(c, cand.Container())
		supplied = true
	}
	if !supplied {
		return 0
	}
	return score
}

// typeGroups maps entry types to a comparison group so that closely
// related types (a chapter filed as inbook or incollection) agree.
var typeGroups = map[reference.EntryType]reference.EntryType{
	reference.TypeInCollection: reference.TypeInBook,
	reference.TypeConference:   reference.TypeInProceedings,
}

func sameType(a, b reference.EntryType) bool {
	if g, ok := typeGroups[a]; ok {
		a = g
	}
	if g, ok := typeGroups[b]; ok {
		b = g
	}
	return a == b
}
