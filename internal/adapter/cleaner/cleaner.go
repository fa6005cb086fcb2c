package cleaner

import (
	"regexp"
	"strings"

	"clinrag/internal/port"
)

var (
	pageRe   = regexp.MustCompile(`(?i)Page\s+\d+(\s+of\s+\d+)?`)
	rightsRe = regexp.MustCompile(`(?i)notice-of-rights|conditions#|all rights reserved|©\s*nice|©\s*the author`)
	urlRe    = regexp.MustCompile(`(?i)https?://|www\.|available at|accessed on`)
	metaRe   = regexp.MustCompile(`(?i)doi:\s*10\.\d+|e-mail:\s+\S+|Email:\s+\S+`)
	tocRe    = regexp.MustCompile(`\.{4,}`)
	ctrlRe   = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
)

// Cleaner normalizes extracted page text: whitespace collapse, PDF
// boilerplate removal, and repeated header/footer stripping.
type Cleaner struct {
	minLineLen int
}

func New() *Cleaner {
	return &Cleaner{minLineLen: 6}
}

// Clean returns the pages with boilerplate removed. Pages reduced to
// nothing are dropped.
func (c *Cleaner) Clean(pages []port.Page) []port.Page {
	repeated := repeatedLines(pages)

	out := make([]port.Page, 0, len(pages))
	for _, page := range pages {
		text := c.cleanPage(page.Text, repeated)
		if text == "" {
			continue
		}
		out = append(out, port.Page{Number: page.Number, Text: text})
	}
	return out
}

func (c *Cleaner) cleanPage(text string, repeated map[string]struct{}) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, dup := repeated[normalizeLine(line)]; dup {
			continue
		}

		line = pageRe.ReplaceAllString(line, "")
		line = metaRe.ReplaceAllString(line, "")
		line = ctrlRe.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)

		if rightsRe.MatchString(line) || urlRe.MatchString(line) || tocRe.MatchString(line) {
			continue
		}
		if len(line) < c.minLineLen {
			continue
		}
		cleaned = append(cleaned, fixStutteringHeader(line))
	}

	// Line structure is preserved so the chunker can spot section headings.
	return strings.Join(cleaned, "\n")
}

// repeatedLines finds lines occurring on more than half the pages —
// running headers and footers the page regexes don't catch.
func repeatedLines(pages []port.Page) map[string]struct{} {
	if len(pages) < 3 {
		return nil
	}

	counts := make(map[string]int)
	for _, page := range pages {
		seen := make(map[string]struct{})
		for _, line := range strings.Split(page.Text, "\n") {
			norm := normalizeLine(line)
			if len(norm) < 6 {
				continue
			}
			if _, ok := seen[norm]; ok {
				continue
			}
			seen[norm] = struct{}{}
			counts[norm]++
		}
	}

	threshold := len(pages) / 2
	repeated := make(map[string]struct{})
	for line, n := range counts {
		if n > threshold {
			repeated[line] = struct{}{}
		}
	}
	return repeated
}

func normalizeLine(line string) string {
	// Page numbers vary between otherwise identical headers
	norm := pageRe.ReplaceAllString(line, "")
	return strings.ToLower(strings.Join(strings.Fields(norm), " "))
}

// fixStutteringHeader drops a duplicated leading word ("Warfarin Warfarin ...")
// left behind when a heading repeats into the body text.
func fixStutteringHeader(text string) string {
	words := strings.Fields(text)
	if len(words) > 1 && strings.EqualFold(words[0], words[1]) {
		return strings.Join(words[1:], " ")
	}
	return text
}
