package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/marketfeed/ai"
	"github.com/poiesic/marketfeed/core"
)

const summaryPromptTemplate = `You are a financial news analyst. Analyze the REAL economic news headlines you are given and answer in Korean.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or acknowledgment. Start your
response directly with the opening brace { and end with the closing brace }. Your output must follow this shape:

{
  "items": [
    {
      "item_index": <the bracketed number of the headline>,
      "korean_title": "<translated title>",
      "korean_body": "<two or three sentence summary in Korean>",
      "impact_score": <integer 1-10>,
      "market_sentiment": "<%s>",
      "actionable_insight": "<one sentence of advice>",
      "related_assets": ["Asset1", "Asset2"]
    }
  ]
}

Rules:
- Return at most one item per headline and copy the headline's bracketed number into item_index.
- impact_score is an integer from 1 (negligible) to 10 (market moving).
- market_sentiment must be exactly one of: %s.
- Use only information contained in or directly implied by the headline. Do not invent events or figures.
- The JSON must parse without errors; no trailing commas and no text outside the object.`

// buildSystemPrompt creates the system prompt with the sentiment labels embedded.
func buildSystemPrompt(v core.Vocabulary) string {
	labels := v.Labels()
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = string(l)
	}
	return fmt.Sprintf(summaryPromptTemplate, strings.Join(names, "|"), strings.Join(names, ", "))
}

// buildUserPrompt numbers each title with its request index.
func buildUserPrompt(requests []ai.SummaryRequest) string {
	var b strings.Builder
	b.WriteString("Articles:\n")
	for _, r := range requests {
		fmt.Fprintf(&b, "[%d] Title: %s\n", r.Index, cleanTitle(r.Title))
	}
	return b.String()
}
