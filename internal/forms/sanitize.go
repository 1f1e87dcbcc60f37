package forms

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Normalize converts input to NFC and trims surrounding whitespace. It is
// the treatment for free text that is escaped or rendered as markdown later.
func Normalize(input string) string {
	return strings.TrimSpace(norm.NFC.String(input))
}

// Sanitize strips markup from user input, normalizes it to NFC and trims
// surrounding whitespace. Text inside script and style elements is dropped.
// Entities are decoded; templates escape the result again on output.
func Sanitize(input string) string {
	if !strings.ContainsAny(input, "<&") {
		return Normalize(input)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var out strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		// io.EOF or malformed input; either way keep what was collected
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isRawTextElement(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isRawTextElement(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				out.Write(tokenizer.Text())
			}
		}
	}

	return Normalize(out.String())
}

func isRawTextElement(name string) bool {
	return name == "script" || name == "style"
}
