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


// Package badger provides a BadgerDB-backed implementation of the storage
// interfaces. Concepts are stored as mus-encoded records keyed by ID, with a
// secondary name index for lookups by concept name.
//
// The package also implements storage.VectorIndex as a full scan over the
// precomputed concept vectors. Index metadata written by the indexing
// pipeline marks the index as built; callers use that signal to decide
// whether indexed queries are trustworthy.
package badger
