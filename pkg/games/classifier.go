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

// Package games decides whether a foreground process looks like a game.
package games

import (
	"strings"

	"golang.org/x/text/cases"
)

const exeSuffix = ".exe"

// Signature is a set of known executables plus substring keywords.
type Signature struct {
	executables map[string]struct{}
	keywords    []string
}

func NewSignature(executables, keywords []string) *Signature {
	s := &Signature{
		executables: make(map[string]struct{}, len(executables)),
		keywords:    make([]string, 0, len(keywords)),
	}
	for _, e := range executables {
		if e = fold(e); e != "" {
			s.executables[e] = struct{}{}
		}
	}
	for _, k := range keywords {
		if k = fold(k); k != "" {
			s.keywords = append(s.keywords, k)
		}
	}
	return s
}

// Match reports whether name is a known game executable or contains one of
// the keywords. Matching ignores case and tolerates a missing ".exe".
func (s *Signature) Match(name string) bool {
	n := fold(name)
	if n == "" {
		return false
	}
	if _, ok := s.executables[n]; ok {
		return true
	}
	if !strings.HasSuffix(n, exeSuffix) {
		if _, ok := s.executables[n+exeSuffix]; ok {
			return true
		}
	}
	for _, k := range s.keywords {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// Len is the number of known executables.
func (s *Signature) Len() int {
	return len(s.executables)
}

// cases.Caser isn't safe for concurrent use, so fold builds one per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

var defaultSignature = NewSignature(KnownExecutables, Keywords)

// IsGame classifies name against the built-in signature list.
func IsGame(name string) bool {
	return defaultSignature.Match(name)
}
