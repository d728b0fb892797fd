package queue

// Routing keys of the events published on the site exchange.
const (
	RoutingVersionCreated   = "site.version.created"
	RoutingProjectPublished = "site.project.published"
	RoutingProjectDeleted   = "site.project.deleted"
	RoutingSaveCompleted    = "site.save.completed"
)

type VersionCreated struct {
	ProjectID string `json:"project_id"`
	VersionID string `json:"version_id"`
	CreatedBy string `json:"created_by"`
}

type ProjectPublished struct {
	ProjectID string  `json:"project_id"`
	Slug      string  `json:"slug"`
	Published bool    `json:"published"`
	VersionID *string `json:"version_id,omitempty"`
}

type ProjectDeleted struct {
	ProjectID string `json:"project_id"`
	Slug      string `json:"slug"`
}

// SaveCompleted is consumed by the sweep worker.
type SaveCompleted struct {
	ProjectID string `json:"project_id"`
	VersionID string `json:"version_id"`
	Assets    int    `json:"assets"`
}
