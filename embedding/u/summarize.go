package u

import (
	"regexp"
	"strings"
)

var surroundingWhitespace = regexp.MustCompile(`^[\s\p{Zs}]+|[\s\p{Zs}]+$`)
var interiorWhitespace = regexp.MustCompile(`[\s\p{Zs}]{2,}`)
var newlines = regexp.MustCompile(`[\r\n]`)

// Summarize collapses whitespace and trims text to at most maxWords words and
// maxLength bytes. Limits of zero or less are not applied.
func Summarize(text string, maxWords int, maxLength int) string {
	// Normalize the whitespace to be something useful (crush it to one giant line)
	text = surroundingWhitespace.ReplaceAllString(text, "")
	text = interiorWhitespace.ReplaceAllString(text, " ")
	text = newlines.ReplaceAllString(text, " ")

	words := strings.Split(text, " ")
	result := text
	if maxWords > 0 && len(words) > maxWords {
		result = strings.Join(words[:maxWords], " ")
	}

	if maxLength > 0 && len(result) > maxLength {
		// First try trimming off the last word
		words = strings.Split(result, " ")
		newResult := ""
		for _, word := range words {
			candidate := word
			if newResult != "" {
				candidate = newResult + " " + word
			}
			if len(candidate) > maxLength {
				break
			}
			newResult = candidate
		}
		result = newResult
		if result == "" {
			// A single word longer than the limit: just trim the thing and add an ellipsis
			result = strings.ToValidUTF8(text[:maxLength], "") + "..."
		}
	}

	return result
}
