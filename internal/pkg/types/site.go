package types

// Site is the triple of text blobs exchanged with the editing surface.
type Site struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// IsEmpty reports whether all three blobs are empty.
func (s Site) IsEmpty() bool {
	return s.HTML == "" && s.CSS == "" && s.JS == ""
}

// AssetIn describes an asset before its body is written.
type AssetIn struct {
	Filename    string                 `json:"filename"`
	ContentType string                 `json:"content_type"`
	Size        int64                  `json:"size"`
	VersionID   string                 `json:"version_id"`
	AssetType   string                 `json:"asset_type"`
	Path        string                 `json:"path"`
	Meta        map[string]interface{} `json:"meta,omitempty"` // [Optional] metadata
}
