package logic

import (
	"context"
	"fmt"
	"strings"
)

const extractionMaxTokens = 4096

const extractionPrompt = `You are a data extraction assistant for MMA fight predictions. You will be given the text of a sports article containing analyst fight picks.

Return every fight prediction in the article as structured JSON. Output raw JSON only: no explanation, no markdown, no preamble.

Rules:
1. Decide whether the article is written by a single analyst or is a multi-analyst "staff picks" article.
2. For a multi-analyst article, group each pick under the analyst who made it.
3. Extract ALL fight predictions whatever their format, including:
   - fights with full written breakdowns
   - quick picks, bullet points and name-only lists (e.g. "Prelims: Fighter A, Fighter B")
   - tables, sidebars and summary sections at the top or bottom of the article
   Do not skip a fight because it has no prose analysis.
4. For each fight, copy both fighters' names exactly as written, then record who the analyst picked to win.
5. Put the weight class in "weight_class" when mentioned (e.g. "Lightweight", "Heavyweight"), otherwise null.
6. When the analyst uses a nickname (e.g. "Stylebender", "Gamebred"), keep it in "nickname_used". Do not resolve it yourself.
7. When a name has an alternate transliteration or uncertain spelling, describe it in "alt_spelling_note".
8. When a winning method is given, set "method_prediction" to EXACTLY one of these values, or null if none is stated:
   - "KO/TKO" for knockout, TKO, stoppage or strikes
   - "Submission" for any submission finish
   - "Decision" for any decision (unanimous, split, majority)
   - "NC" for no contest
   - "DQ" for disqualification
9. Summarize any reasoning or key factors in "reasoning_notes" (max 30 words).
10. When you cannot tell who the analyst picked, set "picked_fighter" to null and "flag_for_review" to true.
11. Never invent or assume a pick. When in doubt, flag it.
12. Put the outlet name (e.g. "MMA Fighting", "Bleacher Report", "YouTube", "Podcast") in the top-level "platform" field. Use the outlet name, not the URL; null if unclear.
13. Put the event location (city and state/country) in the top-level "event_location" field when mentioned, otherwise null.

Return this JSON structure:
{
  "article_type": "single" or "staff",
  "platform": "string or null",
  "event_location": "string or null",
  "analysts": [
    {
      "analyst_name": "string",
      "picks": [
        {
          "fighter_a": "string",
          "fighter_b": "string",
          "weight_class": "string or null",
          "picked_fighter": "string or null",
          "nickname_used": "string or null",
          "alt_spelling_note": "string or null",
          "method_prediction": "KO/TKO" or "Submission" or "Decision" or "NC" or "DQ" or null,
          "confidence_tag": "lean / confident / lock",
          "reasoning_notes": "string or null",
          "flag_for_review": false
        }
      ]
    }
  ]
}`

// Extractor turns article text into the raw extraction payload
type Extractor interface {
	Extract(ctx context.Context, article string) ([]byte, error)
}

type llmExtractor struct {
	llm LLM
}

func NewExtractor(llm LLM) Extractor {
	return &llmExtractor{llm: llm}
}

func (e *llmExtractor) Extract(ctx context.Context, article string) ([]byte, error) {
	if e.llm == nil {
		return nil, ErrLLMUnavailable
	}
	out, err := e.llm.Complete(ctx, extractionPrompt+"\n\n"+article, extractionMaxTokens)
	if err != nil {
		extractionFailures.WithLabelValues("llm").Inc()
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		extractionFailures.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: empty model response", ErrExtractionMalformed)
	}
	return []byte(out), nil
}
