// Copyright 2026 MediQA Systems
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


// Package retrieval provides semantic retrieval over the embedded chunk store.
//
// The Retriever type implements a multi-stage algorithm:
//   - query enrichment from uploaded report keywords
//   - flat nearest-neighbor search by squared L2 distance
//   - a two-stage relevance gate combining a distance cutoff with a
//     lexical domain check
//
// The Index is immutable after construction and shared by all concurrent
// queries; rebuilding the store requires building a fresh Index.
package retrieval
