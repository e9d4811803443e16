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


// Package storage provides the document store abstraction for marketfeed.
//
// Records are persisted as flat field maps inside named collections. Every
// write is keyed by a deterministic record ID, so re-running ingestion over the
// same inputs updates documents in place instead of duplicating them.
//
// # Merge semantics
//
// A merge-upsert only touches the fields it carries. A calendar event stored
// with an actual value keeps it when a later crawl of the same event omits
// the value:
//
//	store.Upsert(ctx, core.CollectionCalendar, ev.ID, ev.Fields(), true)
//
// # Batches
//
// BatchCommit is atomic per call and bounded by MaxBatchSize. Callers with
// more operations split them into chunks; see ingestion.BatchWriter.
//
// # Implementations
//
//   - badger: durable local store on BadgerDB
//   - dryrun: logs writes without persisting anything
//
// All implementations must be thread-safe.
package storage
