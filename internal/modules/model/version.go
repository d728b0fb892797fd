package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ProjectVersion groups the assets written by one save. Versions are never
// mutated after creation.
type ProjectVersion struct {
	ProjectID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	CreatedBy   Principal `gorm:"type:text;not null" json:"created_by"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// ProjectVersion <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (ProjectVersion) TableName() string { return "project_versions" }

// VersionID renders a microsecond timestamp as a version id. Ids are zero
// padded so that lexical order matches creation order.
func VersionID(micros int64) string {
	return fmt.Sprintf("%020d", micros)
}

// VersionTime recovers the creation timestamp encoded in a version id.
func VersionTime(id string) (time.Time, error) {
	micros, err := strconv.ParseInt(id, 10, 64)
	if err != nil || len(id) != 20 {
		return time.Time{}, fmt.Errorf("invalid version id %q", id)
	}
	return time.UnixMicro(micros).UTC(), nil
}
