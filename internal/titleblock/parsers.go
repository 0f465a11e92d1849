package titleblock

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/MeKo-Tech/framescan/internal/frame"
)

const (
	externalCodeLen = 19
	titleLineTol    = 2.0
)

var (
	internalCodePattern  = regexp.MustCompile(`^[A-Z0-9]{7}-[A-Z0-9]{5}(?:-\d{3})?$`)
	engineeringNoPattern = regexp.MustCompile(`^\d{4}$`)
	scalePattern         = regexp.MustCompile(`^1:(\d+(?:\.\d+)?)$`)

	docNoHeaderPattern = regexp.MustCompile(`(?i)DOC\.?\s*NO\.?`)
	nonAlnumPattern    = regexp.MustCompile(`[^A-Z0-9]`)
	alnumPattern       = regexp.MustCompile(`^[A-Za-z0-9]+$`)

	pageInfoPattern  = regexp.MustCompile(`共\s*(\d+)\s*张.*?第\s*([0-9Xx]+)\s*张`)
	pageTotalPattern = regexp.MustCompile(`共\s*(\d+)\s*张`)
	pageIndexPattern = regexp.MustCompile(`第\s*([0-9Xx]+)\s*张`)
)

// normalize folds full-width punctuation and digits (drawing text often uses
// "：" and full-width numerals) to their ASCII forms and trims whitespace.
func normalize(s string) string {
	return strings.TrimSpace(width.Narrow.String(s))
}

// parseInternalCode matches the 7-5[-3] hyphenated code, short form allowed.
func parseInternalCode(texts []frame.RawText) string {
	for _, t := range texts {
		code := strings.ReplaceAll(strings.ToUpper(normalize(t.Text)), " ", "")
		if internalCodePattern.MatchString(code) {
			return code
		}
	}
	return ""
}

// parseExternalCode expects exactly 19 alphanumerics once header tokens like
// "DOC.NO" are stripped. Codes are sometimes drawn as 19 individual
// one-character fragments; those are reconstructed by x-position, ignoring
// any fragment left of a detected header token.
func parseExternalCode(texts []frame.RawText) string {
	if singleCharFragments(texts) {
		return reconstructFragments(texts)
	}
	var joined strings.Builder
	for _, t := range texts {
		joined.WriteString(normalize(t.Text))
	}
	if code := cleanExternalCode(joined.String()); code != "" {
		return code
	}
	return reconstructFragments(texts)
}

// singleCharFragments reports whether, header tokens aside, the gathered text
// consists entirely of one-character pieces. Such codes are drawn character
// by character and carry their order in x-position, not stream order.
func singleCharFragments(texts []frame.RawText) bool {
	count := 0
	for _, t := range texts {
		s := normalize(t.Text)
		if s == "" || docNoHeaderPattern.MatchString(s) {
			continue
		}
		if len([]rune(s)) != 1 {
			return false
		}
		count++
	}
	return count > 1
}

func cleanExternalCode(s string) string {
	s = docNoHeaderPattern.ReplaceAllString(s, "")
	s = nonAlnumPattern.ReplaceAllString(strings.ToUpper(s), "")
	if len(s) == externalCodeLen {
		return s
	}
	return ""
}

func reconstructFragments(texts []frame.RawText) string {
	headerX, hasHeader := 0.0, false
	for _, t := range texts {
		if docNoHeaderPattern.MatchString(t.Text) {
			if !hasHeader || t.X > headerX {
				headerX, hasHeader = t.X, true
			}
		}
	}

	var fragments []frame.RawText
	for _, t := range texts {
		s := normalize(t.Text)
		if !alnumPattern.MatchString(s) {
			continue
		}
		if hasHeader && t.X < headerX {
			continue
		}
		fragments = append(fragments, frame.RawText{Text: s, X: t.X, Y: t.Y})
	}
	sort.SliceStable(fragments, func(i, j int) bool { return fragments[i].X < fragments[j].X })

	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.Text)
	}
	code := strings.ToUpper(b.String())
	if len(code) == externalCodeLen {
		return code
	}
	return ""
}

// parseSimple returns the first non-empty text, optionally constrained by a
// pattern.
func parseSimple(texts []frame.RawText, pattern *regexp.Regexp) string {
	for _, t := range texts {
		s := normalize(t.Text)
		if s == "" {
			continue
		}
		if pattern != nil && !pattern.MatchString(s) {
			continue
		}
		return s
	}
	return ""
}

func parseScaleDenominator(scaleText string) float64 {
	m := scalePattern.FindStringSubmatch(normalize(scaleText))
	if m == nil {
		return 0
	}
	d, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return d
}

// parsePageInfo reads "共N张第M张"; the index token "X" denotes the first
// sheet. When the phrase is drawn without the literal labels, the two
// shortest alphanumeric tokens in the ROI, ordered by x, are taken as
// (total, index).
func parsePageInfo(texts []frame.RawText) (total, index int) {
	var parts []string
	for _, t := range texts {
		parts = append(parts, normalize(t.Text))
	}
	all := strings.Join(parts, " ")

	if m := pageInfoPattern.FindStringSubmatch(all); m != nil {
		return atoiOr0(m[1]), pageIndexValue(m[2])
	}
	if m := pageTotalPattern.FindStringSubmatch(all); m != nil {
		total = atoiOr0(m[1])
	}
	if m := pageIndexPattern.FindStringSubmatch(all); m != nil {
		index = pageIndexValue(m[1])
	}
	if total != 0 || index != 0 {
		return total, index
	}
	return splitTokenPageInfo(texts)
}

// splitTokenPageInfo handles page info drawn as two bare tokens with no
// Chinese label text at all.
func splitTokenPageInfo(texts []frame.RawText) (total, index int) {
	var tokens []frame.RawText
	for _, t := range texts {
		s := normalize(t.Text)
		if alnumPattern.MatchString(s) {
			tokens = append(tokens, frame.RawText{Text: s, X: t.X, Y: t.Y})
		}
	}
	if len(tokens) < 2 {
		return 0, 0
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		if len(tokens[i].Text) != len(tokens[j].Text) {
			return len(tokens[i].Text) < len(tokens[j].Text)
		}
		return tokens[i].X < tokens[j].X
	})
	pair := tokens[:2]
	sort.SliceStable(pair, func(i, j int) bool { return pair[i].X < pair[j].X })

	return atoiOr0(pair[0].Text), pageIndexValue(pair[1].Text)
}

func pageIndexValue(s string) int {
	if strings.EqualFold(s, "X") {
		return 1
	}
	return atoiOr0(s)
}

func atoiOr0(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseTitleBilingual clusters the gathered text into lines by y-proximity,
// then buckets each line as Chinese or non-Chinese by the presence of any
// CJK codepoint.
func parseTitleBilingual(texts []frame.RawText) (cn, en string) {
	var cnLines, enLines []string
	for _, line := range clusterByY(texts, titleLineTol) {
		parts := make([]string, len(line))
		for i, t := range line {
			parts[i] = strings.TrimSpace(t.Text)
		}
		joined := strings.Join(parts, " ")
		if hasCJK(joined) {
			cnLines = append(cnLines, joined)
		} else {
			enLines = append(enLines, joined)
		}
	}
	return strings.Join(cnLines, " "), strings.Join(enLines, " ")
}

// clusterByY groups texts into lines: items within tolerance of the line's
// first y belong to the same line. Input order must already be y-descending.
func clusterByY(texts []frame.RawText, tolerance float64) [][]frame.RawText {
	if len(texts) == 0 {
		return nil
	}
	sorted := append([]frame.RawText(nil), texts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	lines := [][]frame.RawText{{sorted[0]}}
	lineY := sorted[0].Y
	for _, t := range sorted[1:] {
		if lineY-t.Y <= tolerance {
			lines[len(lines)-1] = append(lines[len(lines)-1], t)
			continue
		}
		lines = append(lines, []frame.RawText{t})
		lineY = t.Y
	}
	return lines
}

func hasCJK(s string) bool {
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}

// parseTopByY returns the topmost non-empty text. Revision-history tables
// stack rows upward, so the most recent entry is always highest.
func parseTopByY(texts []frame.RawText) string {
	for _, t := range texts {
		if s := strings.TrimSpace(t.Text); s != "" {
			return s
		}
	}
	return ""
}

// albumCode is the last two characters of the middle hyphen segment of a
// parsed internal code.
func albumCode(internalCode string) string {
	parts := strings.Split(internalCode, "-")
	if len(parts) < 2 || len(parts[1]) < 2 {
		return ""
	}
	return parts[1][len(parts[1])-2:]
}
