// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/marketfeed/ai"
	"github.com/poiesic/marketfeed/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxParseAttempts bounds how often a batch is re-asked after an unreadable reply.
const maxParseAttempts = 2

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client     llms.Model
	vocabulary core.Vocabulary
	timeout    time.Duration
	logger     *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.Enabled() {
		return nil, fmt.Errorf("%w: APIKey is required", ai.ErrInvalidConfig)
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}
	return newSummarizerWithModel(client, config), nil
}

func newSummarizerWithModel(client llms.Model, config *ai.Config) *Summarizer {
	config.Normalize()
	return &Summarizer{
		client:     client,
		vocabulary: config.Vocabulary,
		timeout:    config.Timeout,
		logger:     slog.Default().With("component", "openai-summarizer"),
	}
}

// NewSummarizer creates a summarizer using the provided configuration.
// The configuration must be enabled (carry an API key).
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize sends one batch of titles and returns the parsed items.
// Unreadable replies are retried once before ErrMalformedResponse is returned.
func (s *Summarizer) Summarize(ctx context.Context, requests []ai.SummaryRequest) ([]ai.SummaryItem, error) {
	if len(requests) == 0 {
		return []ai.SummaryItem{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(s.vocabulary))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildUserPrompt(requests))},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		items, err := s.generate(ctx, content)
		if err == nil {
			s.logger.Debug("summarized batch", "requested", len(requests), "returned", len(items))
			return items, nil
		}
		if !errors.Is(err, ai.ErrMalformedResponse) {
			s.logger.Error("summarization request failed", "attempt", attempt+1, "err", err)
			return nil, err
		}
		lastErr = err
		s.logger.Warn("error parsing summarization response", "attempt", attempt+1, "err", err)
	}

	s.logger.Error("failed to parse summarization response after retries", "err", lastErr)
	return nil, lastErr
}

func (s *Summarizer) generate(ctx context.Context, content []llms.MessageContent) ([]ai.SummaryItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.client.GenerateContent(callCtx, content, llms.WithTemperature(0.2), llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, err)
	}
	if len(response.Choices) < 1 {
		return nil, fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
	}
	return parseItems(response.Choices[0].Content)
}

// parseItems reads a reply that is either a bare JSON list of item objects or
// an object wrapping that list (JSON mode forbids a top-level array).
func parseItems(text string) ([]ai.SummaryItem, error) {
	text = repairJSON(stripCodeFences(text))

	list, err := itemList([]byte(text))
	if err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(list, &elems); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, err)
	}

	items := make([]ai.SummaryItem, 0, len(elems))
	for i, elem := range elems {
		var item ai.SummaryItem
		if err := json.Unmarshal(elem, &item); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ai.ErrMalformedResponse, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func itemList(data []byte) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "["):
		return json.RawMessage(trimmed), nil
	case strings.HasPrefix(trimmed, "{"):
	default:
		return nil, fmt.Errorf("%w: expected a JSON list", ai.ErrMalformedResponse)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, err)
	}
	if _, single := wrapper["item_index"]; single {
		return json.RawMessage("[" + trimmed + "]"), nil
	}
	if items, ok := wrapper["items"]; ok && isList(items) {
		return items, nil
	}
	keys := make([]string, 0, len(wrapper))
	for k := range wrapper {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if isList(wrapper[k]) {
			return wrapper[k], nil
		}
	}
	return nil, fmt.Errorf("%w: no item list in object", ai.ErrMalformedResponse)
}

func isList(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(raw)), "[")
}
