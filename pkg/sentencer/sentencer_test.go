package sentencer

import (
	"strings"
	"testing"
)

func feed(s *Sentencer, tokens ...string) []Sentence {
	var out []Sentence
	for _, t := range tokens {
		out = append(out, s.OnToken(t)...)
	}
	out = append(out, s.Flush()...)
	return out
}

func TestSentencerEmitsOnEndPunctuation(t *testing.T) {
	s := New()
	sents := feed(s, "今天天气真好。")
	if len(sents) != 1 {
		t.Fatalf("expected 1 sentence, got %d: %+v", len(sents), sents)
	}
	if sents[0].Text != "今天天气真好。" {
		t.Fatalf("unexpected text: %q", sents[0].Text)
	}
}

func TestSentencerDoesNotSplitOnDecimalNumber(t *testing.T) {
	s := New()
	sents := feed(s, "价格是3.14元，请确认")
	for _, sent := range sents {
		if strings.HasSuffix(sent.Text, "3.") || sent.Text == "价格是3." {
			t.Fatalf("decimal point incorrectly treated as sentence end: %+v", sents)
		}
	}
	var joined strings.Builder
	for _, sent := range sents {
		joined.WriteString(sent.Text)
	}
	if !strings.Contains(joined.String(), "3.14") {
		t.Fatalf("expected the decimal number to survive intact in the emitted text, got %+v", sents)
	}
}

func TestSentencerEmitsOnDigitPrecededDotWithNoFollowingDigit(t *testing.T) {
	s := New()
	sents := feed(s, "报价是3.", "下一句开始了")
	if len(sents) == 0 {
		t.Fatalf("expected the digit-preceded dot with no following digit to end a sentence, got none")
	}
	if sents[0].Text != "报价是3." {
		t.Fatalf("expected the first sentence to end at the dot, got %q", sents[0].Text)
	}
}

func TestSentencerWithholdsShortFragment(t *testing.T) {
	s := New()
	sents := s.OnToken("好。")
	if len(sents) != 0 {
		t.Fatalf("expected no sentence emitted for a fragment under MinSentenceLength, got %+v", sents)
	}
}

func TestSentencerFiltersKaomoji(t *testing.T) {
	s := New()
	sents := feed(s, "你好呀(^_^)开心。")
	if len(sents) != 2 {
		t.Fatalf("expected 2 sentences (split at the kaomoji), got %+v", sents)
	}
	for _, sent := range sents {
		if strings.Contains(sent.Text, "(^_^)") {
			t.Fatalf("expected kaomoji to be filtered from Text, got %q", sent.Text)
		}
	}
}

func TestSentencerSingleEmojiProducesNoSentenceButAppendsMoodToNext(t *testing.T) {
	s := New()
	sents := s.OnToken("\U0001F600")
	if len(sents) != 0 {
		t.Fatalf("expected no sentence from a single emoji, got %+v", sents)
	}

	sents = feed(s, "今天天气真好。")
	if len(sents) != 1 {
		t.Fatalf("expected 1 sentence, got %+v", sents)
	}
	if len(sents[0].Moods) != 1 || sents[0].Moods[0] != "happy" {
		t.Fatalf("expected the pending mood to attach to the next sentence, got %+v", sents[0].Moods)
	}
}

func TestSentencerTextForSpeechStripsEmoji(t *testing.T) {
	s := New()
	sents := feed(s, "我很开心\U0001F600今天。")
	if len(sents) != 2 {
		t.Fatalf("expected 2 sentences (split at the emoji), got %+v", sents)
	}
	if strings.ContainsAny(sents[0].TextForSpeech, "\U0001F600") {
		t.Fatalf("expected emoji stripped from TextForSpeech, got %q", sents[0].TextForSpeech)
	}
	if len(sents[0].Moods) != 1 {
		t.Fatalf("expected 1 mood extracted from the embedded emoji, got %+v", sents[0].Moods)
	}
}

func TestSentencerFlushEmitsRemainder(t *testing.T) {
	s := New()
	s.OnToken("没有结束符的残留句子")
	sents := s.Flush()
	if len(sents) != 1 {
		t.Fatalf("expected flush to emit the remainder as one sentence, got %+v", sents)
	}
}

func TestSentencerSeqIsMonotonic(t *testing.T) {
	s := New()
	sents := feed(s, "第一句话。第二句话。")
	if len(sents) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %+v", len(sents), sents)
	}
	if sents[1].Seq <= sents[0].Seq {
		t.Fatalf("expected strictly increasing Seq, got %d then %d", sents[0].Seq, sents[1].Seq)
	}
}
