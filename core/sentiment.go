package core

import (
	"fmt"
	"strings"
)

// Sentiment is the market direction assigned to an article. It is a closed set;
// free text from the enrichment service never reaches storage.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentBullish  Sentiment = "BULLISH"
	SentimentBearish  Sentiment = "BEARISH"
)

// Vocabulary selects which sentiment labels are persisted.
type Vocabulary int

const (
	// VocabularyMarket uses POSITIVE / NEGATIVE / NEUTRAL.
	VocabularyMarket Vocabulary = iota + 1
	// VocabularyTrading uses BULLISH / BEARISH / NEUTRAL.
	VocabularyTrading
)

// ParseVocabulary maps a configuration string to a Vocabulary.
func ParseVocabulary(s string) (Vocabulary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "market":
		return VocabularyMarket, nil
	case "trading":
		return VocabularyTrading, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVocabulary, s)
	}
}

// Labels returns the closed set of sentiments allowed in the vocabulary.
func (v Vocabulary) Labels() []Sentiment {
	if v == VocabularyTrading {
		return []Sentiment{SentimentBullish, SentimentBearish, SentimentNeutral}
	}
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
}

func (v Vocabulary) String() string {
	if v == VocabularyTrading {
		return "trading"
	}
	return "market"
}

// ParseSentiment maps a raw label onto the vocabulary. Labels from the other
// vocabulary are translated (BULLISH becomes POSITIVE under VocabularyMarket).
// Anything else yields SentimentNeutral together with ErrUnknownSentiment.
func ParseSentiment(v Vocabulary, raw string) (Sentiment, error) {
	var up, down Sentiment
	if v == VocabularyTrading {
		up, down = SentimentBullish, SentimentBearish
	} else {
		up, down = SentimentPositive, SentimentNegative
	}

	switch Sentiment(strings.ToUpper(strings.TrimSpace(raw))) {
	case SentimentPositive, SentimentBullish:
		return up, nil
	case SentimentNegative, SentimentBearish:
		return down, nil
	case SentimentNeutral:
		return SentimentNeutral, nil
	default:
		return SentimentNeutral, fmt.Errorf("%w: %q", ErrUnknownSentiment, raw)
	}
}
