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

// Package openai provides an ai.Summarizer backed by OpenAI-compatible chat APIs.
//
// It uses the langchaingo client, so any endpoint speaking the OpenAI chat
// completions protocol works, including Gemini's compatibility endpoint.
//
// # Usage
//
//	config := ai.NewConfig(ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
//	summarizer, err := openai.NewSummarizer(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	items, err := summarizer.Summarize(ctx, []ai.SummaryRequest{
//	    {Index: 0, Title: "Fed holds rates steady"},
//	})
//
// Replies are requested in JSON mode. Code fences, unquoted keys and trailing
// commas are repaired before decoding; anything that still is not a list of
// item objects yields ai.ErrMalformedResponse.
package openai
