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
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// IngestionRun records one pipeline run: the target, its outcome and the
// serialized SiteScrape result for completed runs.
type IngestionRun struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	TargetURL   string `gorm:"index" json:"targetUrl"`
	Status      string `gorm:"index" json:"status"`
	Error       string `json:"error,omitempty"`
	PageCount   int    `json:"pageCount"`
	BlockCount  int    `json:"blockCount"`
	// Result holds the SiteScrape aggregate as JSON.
	Result      string     `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CreateRun records the start of an ingestion run.
func (s *Store) CreateRun(targetURL string) (*IngestionRun, error) {
	run := IngestionRun{
		TargetURL: targetURL,
		Status:    RunStatusRunning,
	}
	if err := s.db.Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to create run: %v", err)
	}
	return &run, nil
}

// CompleteRun marks a run as completed and stores its serialized result.
func (s *Store) CompleteRun(runID uint, resultJSON string, pageCount, blockCount int) error {
	now := time.Now().UTC()
	return s.db.Model(&IngestionRun{}).Where("id = ?", runID).Updates(map[string]interface{}{
		"status":       RunStatusCompleted,
		"result":       resultJSON,
		"page_count":   pageCount,
		"block_count":  blockCount,
		"completed_at": &now,
	}).Error
}

// FailRun marks a run as failed with a human-readable message.
func (s *Store) FailRun(runID uint, message string) error {
	now := time.Now().UTC()
	return s.db.Model(&IngestionRun{}).Where("id = ?", runID).Updates(map[string]interface{}{
		"status":       RunStatusFailed,
		"error":        message,
		"completed_at": &now,
	}).Error
}

// GetRun gets a run by ID.
func (s *Store) GetRun(id uint) (*IngestionRun, error) {
	var run IngestionRun
	if err := s.db.First(&run, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get run: %v", err)
	}
	return &run, nil
}

// ListRuns returns runs newest first, bounded by limit (0 means all).
func (s *Store) ListRuns(limit int) ([]IngestionRun, error) {
	var runs []IngestionRun
	query := s.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %v", err)
	}
	return runs, nil
}

// GetLatestRunForTarget returns the most recent run for a target URL, or
// nil when none exists.
func (s *Store) GetLatestRunForTarget(targetURL string) (*IngestionRun, error) {
	var run IngestionRun
	err := s.db.Where("target_url = ?", targetURL).Order("created_at DESC").First(&run).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest run: %v", err)
	}
	return &run, nil
}

// DeleteRun removes a run record.
func (s *Store) DeleteRun(id uint) error {
	return s.db.Delete(&IngestionRun{}, id).Error
}
