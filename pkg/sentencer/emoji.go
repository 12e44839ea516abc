package sentencer

import "regexp"

// kaomojiPattern matches common Western-style text emoticons: bracketed
// or angle-bracketed faces, tilde/underscore noseless faces, the
// shrug/arms pattern, and the common ASCII smiley forms.
var kaomojiPattern = regexp.MustCompile(
	`\([^)]{1,10}\)|` +
		`<[^>]{1,10}>|` +
		`[\\*][_-]{1,2}[\\*]|` +
		`\\o/|` +
		`:-?[)D(]|` +
		`;-?\)|` +
		`=\\?[_/]`,
)

func containsKaomoji(s string) bool {
	return kaomojiPattern.MatchString(s)
}

func filterKaomoji(s string) string {
	return kaomojiPattern.ReplaceAllString(s, "")
}

// nonWordPattern strips everything but word characters and
// CJK ideographs, the same test used to decide whether an emitted
// sentence carries real content or is punctuation noise.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_]`)

func hasSubstantialContent(s string) bool {
	if len(s) == 0 {
		return false
	}
	stripped := nonWordPattern.ReplaceAllString(s, "")
	return len([]rune(stripped)) >= 2
}

// emoji codepoint ranges, per spec: 1F300-1F6FF, 1F900-1FAFF, 2600-27BF,
// plus the 1F600-1F64F emoticon block and 1F680-1F6FF transport block
// that fall inside 1F300-1F6FF.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F6FF:
		return true
	case r >= 0x1F900 && r <= 0x1FAFF:
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	}
	return false
}
