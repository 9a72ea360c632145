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


package core

import "fmt"

// ValidateConcept validates a Concept according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - SourceType must be valid
//   - CredibilityWeight must not be negative (0 is valid and means unset)
//
// NOT validated (populated by the indexing pipeline):
//   - Vector (can be empty until the concept is embedded)
//   - ID (derived from Name by the store when 0)
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}

	if concept.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyConceptName)
	}

	if err := ValidateSourceType(concept.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, err)
	}

	if concept.CredibilityWeight < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrInvalidCredibility)
	}

	return nil
}

// ValidateSourceType validates that a SourceType has a valid value.
func ValidateSourceType(sourceType SourceType) error {
	switch sourceType {
	case SourceTypeOfficial, SourceTypeTeacher, SourceTypeStudent:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSourceType, sourceType)
	}
}
