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

// Package ai provides the summarization service boundary used to enrich articles.
//
// The service receives numbered article titles and returns a JSON list of
// items, each echoing the number it describes as item_index. The reply is
// untrusted: callers correlate strictly by that echoed index and discard
// anything that does not match a request.
//
// # Implementation Packages
//
//   - ai/openai: langchaingo client for OpenAI-compatible chat endpoints (Gemini included)
//   - ai/mock: test double with injectable behavior
//
// # Degraded Mode
//
// A Config without an API key reports Enabled() == false. The ingestion
// pipeline then skips the service entirely and stores pending fallback
// enrichment for every new article.
package ai
