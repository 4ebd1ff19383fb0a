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


// Package ai provides abstractions for the AI services used by mediqa.
//
// This package defines interfaces for text embeddings and chat completion.
// It follows the dependency inversion principle, allowing the retrieval and
// answering logic to depend on abstractions rather than concrete
// implementations.
//
// Two implementation sub-packages are included:
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles for unit testing without
//     external services
//
// Production constructors (openai.NewProvider and friends) return interface
// types to enforce abstraction; mock constructors return concrete types so
// tests can inject behavior and assert on call counts.
package ai
