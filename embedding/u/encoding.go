package u

import (
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// DecodeText converts a fetched body to UTF-8. A charset named by the
// Content-Type header (or a byte order mark) wins, then chardet's guess, then
// whatever the document's own meta tags claim. Undecodable bodies are returned
// as-is.
func DecodeText(raw []byte, contentType string) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	declared, _, certain := charset.DetermineEncoding(raw, contentType)
	if certain {
		if decoded, err := declared.NewDecoder().Bytes(raw); err == nil {
			return string(decoded)
		}
	}

	if guess, err := chardet.NewTextDetector().DetectBest(raw); err == nil {
		if enc, _ := charset.Lookup(guess.Charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(decoded)
			}
		}
	}

	if decoded, err := declared.NewDecoder().Bytes(raw); err == nil {
		return string(decoded)
	}
	return string(raw)
}
