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


// Package storage defines the persistence contract for chunk records and the
// MUS binary serialization used by backends.
//
// A chunk record carries its embedding vector alongside its identity and
// provenance metadata. Persisting the two together avoids the silent
// corruption that positional alignment between a separate vector file and a
// separate metadata file would allow.
//
// The storage/badger sub-package provides the BadgerDB implementation.
package storage
