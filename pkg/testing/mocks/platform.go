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

package mocks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/heyclandestine/gamercred/pkg/config"
	"github.com/heyclandestine/gamercred/pkg/helpers/syncutil"
	"github.com/heyclandestine/gamercred/pkg/platforms"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a testify mock of platforms.Platform. URLs passed to
// OpenBrowser are recorded for inspection.
type MockPlatform struct {
	mock.Mock
	openedURLs []string
	mu         syncutil.Mutex
}

func NewMockPlatform() *MockPlatform {
	return &MockPlatform{openedURLs: make([]string, 0)}
}

func (m *MockPlatform) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlatform) Settings() platforms.Settings {
	args := m.Called()
	if settings, ok := args.Get(0).(platforms.Settings); ok {
		return settings
	}
	return platforms.Settings{}
}

func (m *MockPlatform) StartPre(cfg *config.Instance) error {
	args := m.Called(cfg)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform start pre failed: %w", err)
	}
	return nil
}

func (m *MockPlatform) Stop() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform stop failed: %w", err)
	}
	return nil
}

func (m *MockPlatform) ActiveWindow(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	//nolint:wrapcheck // mock
	return args.String(0), args.Error(1)
}

func (m *MockPlatform) OpenBrowser(url string) error {
	m.mu.Lock()
	m.openedURLs = append(m.openedURLs, url)
	m.mu.Unlock()

	args := m.Called(url)
	//nolint:wrapcheck // mock
	return args.Error(0)
}

// OpenedURLs returns every URL passed to OpenBrowser.
func (m *MockPlatform) OpenedURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.openedURLs...)
}

// SetupBasicMock stubs the lifecycle methods and points every directory
// inside root.
func (m *MockPlatform) SetupBasicMock(root string) {
	m.On("ID").Return("mock-platform")
	m.On("Settings").Return(platforms.Settings{
		DataDir:   filepath.Join(root, "data"),
		ConfigDir: filepath.Join(root, "config"),
		TempDir:   filepath.Join(root, "tmp"),
	})
	m.On("StartPre", mock.Anything).Return(nil)
	m.On("Stop").Return(nil)
	m.On("OpenBrowser", mock.Anything).Return(nil)
}
