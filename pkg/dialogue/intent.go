package dialogue

import (
	"regexp"
	"strings"
)

// exitKeywords is the short-utterance fallback vocabulary, grounded on
// original_source/backend/app/utils/exit_keyword_detector.py's
// ExitKeywordDetector.EXIT_KEYWORDS.
var exitKeywords = []string{
	"拜拜", "再见", "退下", "走了", "我走了", "我要走了", "结束对话", "退出",
	"下线", "结束", "告辞", "告退", "离开",
	"goodbye", "bye", "bye bye", "byebye", "see you", "see ya",
}

// exitPatterns are matched against the whole utterance first; any hit is
// an exit intent regardless of length, ported from EXACT_PATTERNS.
var exitPatterns = compileAll(
	`.*拜拜.*`, `.*再见.*`, `.*退下.*`, `.*走了.*`, `.*我?要?走了.*`,
	`.*结束对话.*`, `.*退出.*`, `.*告辞.*`, `.*告退.*`,
	`.*(?:我|你)?(?:先)?(?:要)?离开.*`, `.*(?:我|你)?(?:先)?下线.*`,
	`.*bye\s*bye.*`, `.*goodbye.*`, `.*see\s+you.*`, `.*see\s+ya.*`,
)

// exitExcludePatterns veto an otherwise-matching utterance, ported from
// EXCLUDE_PATTERNS (negations and questions about leaving are not exit
// intents).
var exitExcludePatterns = compileAll(
	`.*不.*(?:退出|离开|走|退下|结束).*`, `.*别.*(?:退出|离开|走|退下|结束).*`,
	`.*不要.*(?:退出|离开|走|退下|结束).*`, `.*为什么.*(?:退出|离开|走|退下|结束).*`,
	`.*怎么.*(?:退出|离开|走|退下|结束).*`, `.*如何.*(?:退出|离开|走|退下|结束).*`,
	`.*能否.*(?:退出|离开|走|退下|结束).*`, `.*可以.*(?:退出|离开|走|退下|结束).*`,
	`.*会.*(?:退出|离开|走|退下|结束).*`, `.*什么.*(?:退出|离开|走|退下|结束).*`,
	`.*don't.*(?:leave|exit|quit|bye).*`, `.*not.*(?:leave|exit|quit|bye).*`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

// shortUtteranceLimit bounds the keyword-substring fallback to short
// utterances, so an exit keyword buried in an unrelated long sentence
// isn't misread as an exit intent.
const shortUtteranceLimit = 15

// IsExitIntent reports whether text expresses a wish to end the dialogue,
// grounded on IntentDetector.detect_intent + ExitKeywordDetector's
// exclude/exact/keyword cascade.
func IsExitIntent(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	normalized := strings.ToLower(trimmed)

	for _, p := range exitExcludePatterns {
		if p.MatchString(normalized) {
			return false
		}
	}
	for _, p := range exitPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	if len([]rune(normalized)) <= shortUtteranceLimit {
		for _, kw := range exitKeywords {
			if strings.Contains(normalized, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}
