// GamerCred Companion
// Copyright (c) 2026 The GamerCred Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of GamerCred Companion.
//
// GamerCred Companion is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GamerCred Companion is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GamerCred Companion.  If not, see <http://www.gnu.org/licenses/>.

package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is what Validate returns when params break one or more rules.
// Its text is sent back to the API client as is.
type Error struct {
	Fields []FieldError
}

// FieldError is one broken rule. Field is the Go field name and Param the
// rule argument, e.g. "300" for max=300.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e *Error) Error() string {
	var sb strings.Builder
	for i, f := range e.Fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(f.Message)
	}
	if sb.Len() == 0 {
		return "invalid params"
	}
	return sb.String()
}

// comparisons maps bound-style tags to the phrase placed before the bound.
var comparisons = map[string]string{
	"min":   "must be at least",
	"max":   "must be at most",
	"gt":    "must be greater than",
	"gte":   "must be greater than or equal to",
	"lt":    "must be less than",
	"lte":   "must be less than or equal to",
	"oneof": "must be one of:",
}

func fromValidator(errs validator.ValidationErrors) *Error {
	out := &Error{Fields: make([]FieldError, 0, len(errs))}
	for _, fe := range errs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "label":
		return name + " must not be blank or contain control characters"
	}
	if phrase, ok := comparisons[fe.Tag()]; ok {
		return name + " " + phrase + " " + fe.Param()
	}
	return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
}
