package models

import (
	"time"

	"gorm.io/datatypes"
)

// SnapshotRecord persists the most recent tournament snapshot so a restarted
// process can serve stale data before its first successful refresh
type SnapshotRecord struct {
	TournamentID string         `gorm:"primaryKey;size:64" json:"tournament_id"`
	Round        int            `json:"round"`
	Payload      datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	FetchedAt    time.Time      `gorm:"not null" json:"fetched_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName overrides the default table name
func (SnapshotRecord) TableName() string {
	return "tournament_snapshots"
}
