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


// Package search answers semantic concept queries with layered fallbacks.
//
// The Engine tries three strategies in order of preference:
//   - Indexed: query the store's vector index over precomputed embeddings
//   - Hybrid: fetch candidates and score them in the application, encoding
//     missing vectors on the fly in parallel
//   - Degraded: keyword substring matching when no embedder is available
//
// Results are ranked by similarity weighted with source credibility, and
// cached with a TTL and size bound. Search never fails the caller: any
// degraded condition produces an empty or keyword-matched result list.
package search
