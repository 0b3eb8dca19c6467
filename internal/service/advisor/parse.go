package advisor

import (
	"regexp"
	"strings"
)

var (
	itemMarker = regexp.MustCompile(`(?m)\b\d+[.)]\s*`)
	terminator = regexp.MustCompile(`[^.!?]*[.!?]+`)
)

// ParseNumberedQuestions extracts questions from a numbered-list response
// such as "1. First?\n2. Second?". It is best-effort: embedded newlines are
// collapsed, a final unnumbered fragment is ignored, and a response with no
// usable items yields nil so the caller can fall back to defaults.
func ParseNumberedQuestions(text string) []string {
	locs := itemMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	questions := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		q := strings.Join(strings.Fields(text[loc[1]:end]), " ")
		if q != "" {
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 {
		return nil
	}
	return questions
}

// TruncateSentences keeps at most limit sentence-terminator-delimited
// segments of text, each retaining its terminator. Text without any
// terminator is returned unchanged.
func TruncateSentences(text string, limit int) string {
	text = strings.TrimSpace(text)
	locs := terminator.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	segments := make([]string, 0, len(locs)+1)
	for _, loc := range locs {
		segments = append(segments, text[loc[0]:loc[1]])
	}
	// A trailing unterminated fragment still counts as a segment.
	if rest := strings.TrimSpace(text[locs[len(locs)-1][1]:]); rest != "" {
		segments = append(segments, rest)
	}
	if len(segments) <= limit {
		return text
	}

	kept := make([]string, 0, limit)
	for _, segment := range segments[:limit] {
		kept = append(kept, strings.TrimSpace(segment))
	}
	return strings.Join(kept, " ")
}
