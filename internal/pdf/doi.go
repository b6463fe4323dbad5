// Package pdf pulls identifying metadata out of article PDFs.
package pdf

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/betterbib/internal/doi"
)

// searchPages is how many leading pages are scanned; the DOI is almost
// always on the first page.
const searchPages = 3

// pageTexts returns the plain text of the first maxPages pages.
func pageTexts(filePath string, maxPages int) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var texts []string
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// ExtractDOI extracts a DOI from a PDF file.
// It searches the first few pages for DOI patterns.
func ExtractDOI(filePath string) (string, error) {
	texts, err := pageTexts(filePath, searchPages)
	if err != nil {
		return "", err
	}
	for _, text := range texts {
		if d := DOIFromText(text); d != "" {
			return d, nil
		}
	}
	return "", nil // No DOI found (not an error)
}

// ExtractTitle attempts to extract the title from a PDF.
// This is a best-effort heuristic: the first substantial line of page one.
func ExtractTitle(filePath string) (string, error) {
	texts, err := pageTexts(filePath, 1)
	if err != nil {
		return "", err
	}
	if len(texts) == 0 {
		return "", nil
	}
	return TitleFromText(texts[0]), nil
}

// DOIFromText returns the first plausible DOI in text, normalized.
func DOIFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if d := doi.Find(line); isValidDOI(d) {
			return doi.Normalize(d)
		}
	}
	return ""
}

// TitleFromText returns the first line that looks like a title.
func TitleFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		// Skip short lines, headers, etc.
		if len(line) > 20 && !isHeaderLine(line) && doi.Find(line) == "" {
			return line
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(d string) bool {
	if len(d) < 10 || !strings.HasPrefix(d, "10.") {
		return false
	}
	slashIdx := strings.Index(d, "/")
	return slashIdx != -1 && slashIdx < len(d)-1
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.Contains(lower, "volume") && strings.Contains(lower, "issue"),
		strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
