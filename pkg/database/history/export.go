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

package history

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

type csvRow struct {
	Game      string  `csv:"game"`
	StartedAt string  `csv:"started_at"`
	EndedAt   string  `csv:"ended_at"`
	Hours     float64 `csv:"hours"`
}

// WriteCSV writes entries to w with a header row. Times are RFC 3339 UTC.
func WriteCSV(w io.Writer, entries []Entry) error {
	rows := make([]csvRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, csvRow{
			Game:      e.Game,
			StartedAt: e.StartTime.UTC().Format(time.RFC3339),
			EndedAt:   e.EndTime.UTC().Format(time.RFC3339),
			Hours:     e.Hours,
		})
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fmt.Errorf("failed to encode history csv: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write history csv: %w", err)
	}
	return nil
}
