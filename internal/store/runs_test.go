// Copyright 2025 Divetide, Inc.
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

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreForTesting(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := newTestStore(t)

	run, err := s.CreateRun("https://bluedivers.example/")
	require.NoError(t, err)
	require.NotZero(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://bluedivers.example/", got.TargetURL)
	assert.Nil(t, got.CompletedAt)
}

func TestCompleteRun(t *testing.T) {
	s := newTestStore(t)

	run, err := s.CreateRun("https://bluedivers.example/")
	require.NoError(t, err)

	require.NoError(t, s.CompleteRun(run.ID, `{"targetUrl": "https://bluedivers.example/"}`, 3, 7))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.Equal(t, 3, got.PageCount)
	assert.Equal(t, 7, got.BlockCount)
	assert.Contains(t, got.Result, "bluedivers.example")
	require.NotNil(t, got.CompletedAt)
}

func TestFailRun(t *testing.T) {
	s := newTestStore(t)

	run, err := s.CreateRun("https://bluedivers.example/")
	require.NoError(t, err)

	require.NoError(t, s.FailRun(run.ID, "render failed"))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "render failed", got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)

	for _, target := range []string{"https://a.example/", "https://b.example/", "https://c.example/"} {
		_, err := s.CreateRun(target)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	limited, err := s.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetLatestRunForTarget(t *testing.T) {
	s := newTestStore(t)

	latest, err := s.GetLatestRunForTarget("https://bluedivers.example/")
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := s.CreateRun("https://bluedivers.example/")
	require.NoError(t, err)
	_, err = s.CreateRun("https://other.example/")
	require.NoError(t, err)

	latest, err = s.GetLatestRunForTarget("https://bluedivers.example/")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, first.ID, latest.ID)
}

func TestDeleteRun(t *testing.T) {
	s := newTestStore(t)

	run, err := s.CreateRun("https://bluedivers.example/")
	require.NoError(t, err)
	require.NoError(t, s.DeleteRun(run.ID))

	_, err = s.GetRun(run.ID)
	assert.Error(t, err)
}
