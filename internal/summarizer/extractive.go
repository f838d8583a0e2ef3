package summarizer

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`[^.!?]*[.!?]`)
	wordRe     = regexp.MustCompile(`\pL+`)
)

// Extractive picks the highest scoring sentences of the text itself. It needs
// no network and is used when the hosted model is unavailable.
type Extractive struct {
	MaxSentences int
}

func NewExtractive(maxSentences int) *Extractive {
	if maxSentences <= 0 {
		maxSentences = 4
	}
	return &Extractive{MaxSentences: maxSentences}
}

func (e *Extractive) Summarize(_ context.Context, text string) (string, error) {
	summary := summarizeText(text, e.MaxSentences)
	if summary == "" {
		return "", ErrEmptyText
	}
	return summary, nil
}

// summarizeText scores sentences by global word frequency, drops near
// duplicates and returns the best ones in their original order. If the size
// filters leave nothing it returns the first maxSentences sentences.
func summarizeText(text string, maxSentences int) string {
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if text == "" || maxSentences <= 0 {
		return ""
	}

	raw := sentenceRe.FindAllString(text, -1)
	if len(raw) == 0 {
		if utf8.RuneCountInString(text) > 500 {
			return string([]rune(text)[:500]) + "..."
		}
		return text
	}

	freq := map[string]int{}
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 2 {
			freq[w]++
		}
	}

	type sentence struct {
		text  string
		idx   int
		score int
	}
	sents := make([]sentence, 0, len(raw))
	for i, s := range raw {
		score := 0
		for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
			score += freq[w]
		}
		sents = append(sents, sentence{text: strings.TrimSpace(s), idx: i, score: score})
	}

	sort.SliceStable(sents, func(i, j int) bool { return sents[i].score > sents[j].score })
	pool := min(maxSentences*3, len(sents))

	const minRunes, maxRunes, simThresh = 40, 400, 0.7
	chosen := make([]sentence, 0, maxSentences)
	for _, c := range sents[:pool] {
		n := utf8.RuneCountInString(c.text)
		if n < minRunes || n > maxRunes {
			continue
		}
		dup := false
		for _, d := range chosen {
			if jaccardSimilarity(c.text, d.text) > simThresh {
				dup = true
				break
			}
		}
		if !dup {
			chosen = append(chosen, c)
			if len(chosen) == maxSentences {
				break
			}
		}
	}

	if len(chosen) == 0 {
		lead := make([]string, 0, maxSentences)
		for _, s := range raw[:min(maxSentences, len(raw))] {
			lead = append(lead, strings.TrimSpace(s))
		}
		return strings.Join(lead, " ")
	}

	sort.Slice(chosen, func(i, j int) bool { return chosen[i].idx < chosen[j].idx })
	out := make([]string, 0, len(chosen))
	for _, c := range chosen {
		out = append(out, c.text)
	}
	return strings.Join(out, " ")
}

func jaccardSimilarity(a, b string) float64 {
	setA := map[string]struct{}{}
	for _, w := range wordRe.FindAllString(strings.ToLower(a), -1) {
		setA[w] = struct{}{}
	}
	setB := map[string]struct{}{}
	for _, w := range wordRe.FindAllString(strings.ToLower(b), -1) {
		setB[w] = struct{}{}
	}

	inter, union := 0, len(setA)
	for w := range setB {
		if _, ok := setA[w]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
