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


// Package ai provides abstractions for the embedding services used by
// coursegraph.
//
// The package defines the Embedder interface for turning text into
// fixed-length vectors, singly or batched, and the EmbedderProvider
// interface for lifecycle management. The search and indexing layers depend
// only on these abstractions.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs,
//     with primary-then-fallback model loading
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Production constructors return interface types to enforce abstraction;
// mock constructors return concrete types to enable behavior injection and
// call-count assertions in tests.
package ai
