package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssetType is the closed set of asset kinds a site is made of.
type AssetType string

const (
	AssetTypeHTML       AssetType = "html"
	AssetTypeCSS        AssetType = "css"
	AssetTypeJavaScript AssetType = "javascript"
	AssetTypeImage      AssetType = "image"
	AssetTypeBinary     AssetType = "binary"
)

// AssetTypeConfig describes how an editor-produced asset kind is filed.
type AssetTypeConfig struct {
	Name        AssetType `json:"name"`
	ContentType string    `json:"content_type"`
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	// Editor kinds are the three text blobs exchanged with the editing surface.
	Editor bool `json:"editor"`
}

var AssetTypes = map[AssetType]AssetTypeConfig{
	AssetTypeHTML: {
		Name:        AssetTypeHTML,
		ContentType: "text/html; charset=utf-8",
		Filename:    "index.html",
		Path:        "/",
		Editor:      true,
	},
	AssetTypeCSS: {
		Name:        AssetTypeCSS,
		ContentType: "text/css; charset=utf-8",
		Filename:    "styles.css",
		Path:        "/",
		Editor:      true,
	},
	AssetTypeJavaScript: {
		Name:        AssetTypeJavaScript,
		ContentType: "text/javascript; charset=utf-8",
		Filename:    "script.js",
		Path:        "/",
		Editor:      true,
	},
	AssetTypeImage: {
		Name:        AssetTypeImage,
		ContentType: "application/octet-stream",
		Path:        "/images/",
	},
	AssetTypeBinary: {
		Name:        AssetTypeBinary,
		ContentType: "application/octet-stream",
		Path:        "/files/",
	},
}

// EditorAssetTypes lists the kinds a save writes, in write order.
var EditorAssetTypes = []AssetType{AssetTypeHTML, AssetTypeCSS, AssetTypeJavaScript}

// ParseAssetType accepts the canonical names plus the "js" shorthand.
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(strings.ToLower(strings.TrimSpace(s)))
	if t == "js" {
		t = AssetTypeJavaScript
	}
	if !t.Valid() {
		return "", fmt.Errorf("unknown asset type: %q", s)
	}
	return t, nil
}

func (t AssetType) Valid() bool {
	_, ok := AssetTypes[t]
	return ok
}

func (t AssetType) Config() AssetTypeConfig {
	return AssetTypes[t]
}

type Asset struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID         `gorm:"type:uuid;not null;index;index:idx_assets_project_version,priority:1" json:"project_id"`
	VersionID   string            `gorm:"type:text;not null;index:idx_assets_project_version,priority:2" json:"version_id"`
	Filename    string            `gorm:"type:text;not null" json:"filename"`
	Path        string            `gorm:"type:text;not null" json:"path"`
	ContentType string            `gorm:"type:text;not null" json:"content_type"`
	AssetType   AssetType         `gorm:"type:text;not null" json:"asset_type"`
	Size        int64             `gorm:"type:bigint;not null" json:"size"`
	Meta        datatypes.JSONMap `gorm:"type:jsonb" swaggertype:"object" json:"meta,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	// Asset <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Asset) TableName() string { return "assets" }

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ChunkCount is ceil(size / chunkSize).
func (a *Asset) ChunkCount(chunkSize int) int {
	if a.Size <= 0 || chunkSize <= 0 {
		return 0
	}
	cs := int64(chunkSize)
	return int((a.Size + cs - 1) / cs)
}

// FullPath joins path and filename the way the public site addresses it.
func (a *Asset) FullPath() string {
	p := a.Path
	if p == "" {
		p = "/"
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p + a.Filename
}

// AssetChunk is one bounded slice of an asset body. Data is empty when the
// body lives in the object store under StorageKey.
type AssetChunk struct {
	AssetID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"asset_id"`
	Index      int       `gorm:"column:idx;primaryKey" json:"index"`
	Size       int       `gorm:"not null" json:"size"`
	SHA256     string    `gorm:"column:sha256;type:char(64);not null" json:"sha256"`
	StorageKey string    `gorm:"type:text;not null;default:''" json:"-"`
	Data       []byte    `gorm:"type:bytea" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// AssetChunk <-> Asset
	Asset *Asset `gorm:"foreignKey:AssetID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (AssetChunk) TableName() string { return "asset_chunks" }
