package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Principal is the opaque caller identity handed over by the identity gateway.
type Principal string

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Owner       Principal `gorm:"type:text;not null;index" json:"owner"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	URLSlug     string    `gorm:"column:url_slug;type:text;not null;uniqueIndex" json:"url_slug"`
	TemplateID  *string   `gorm:"type:text" json:"template_id"`

	CurrentVersionID   *string `gorm:"type:text" json:"current_version"`
	Published          bool    `gorm:"not null;default:false" json:"published"`
	PublishedVersionID *string `gorm:"type:text" json:"published_version"`

	// Microsecond timestamp of the newest version; bumped atomically on version creation.
	LastVersionAt int64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Project <-> ProjectCollaborator
	Collaborators []ProjectCollaborator `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CollaboratorSet returns the collaborator principals in insertion order.
func (p *Project) CollaboratorSet() []Principal {
	out := make([]Principal, 0, len(p.Collaborators))
	for _, c := range p.Collaborators {
		out = append(out, c.Principal)
	}
	return out
}

type ProjectCollaborator struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	Principal Principal `gorm:"type:text;primaryKey;index" json:"principal"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// ProjectCollaborator <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (ProjectCollaborator) TableName() string { return "project_collaborators" }

// ProjectView is the wire shape of a project, including its collaborator set.
type ProjectView struct {
	*Project
	Collaborators []Principal `json:"collaborators"`
}

func NewProjectView(p *Project) ProjectView {
	return ProjectView{Project: p, Collaborators: p.CollaboratorSet()}
}
