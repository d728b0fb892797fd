package httpclient

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"github.com/memodb-io/sitestore/internal/pkg/types"
)

// SiteBackend is the part of Client a Workspace needs.
type SiteBackend interface {
	LoadSite(ctx context.Context, projectID uuid.UUID, versionID string) (*LoadedSite, error)
	SaveSite(ctx context.Context, projectID uuid.UUID, site types.Site, description string) (*SavedSite, error)
}

// Workspace holds the editor state of one project. It keeps the last good
// state across failed calls and exposes a single message for the latest
// failure.
type Workspace struct {
	backend   SiteBackend
	projectID uuid.UUID

	mu        sync.Mutex
	state     types.Site
	versionID string
	errMsg    string
}

func NewWorkspace(backend SiteBackend, projectID uuid.UUID) *Workspace {
	return &Workspace{backend: backend, projectID: projectID}
}

// Load replaces the state with versionID (current version when empty).
func (w *Workspace) Load(ctx context.Context, versionID string) error {
	res, err := w.backend.LoadSite(ctx, w.projectID, versionID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.errMsg = Message(err)
		return err
	}
	w.state = res.Site
	w.versionID = res.VersionID
	w.errMsg = ""
	return nil
}

// Edit replaces the local state without saving it.
func (w *Workspace) Edit(site types.Site) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = site
}

// Save writes the local state as a new version.
func (w *Workspace) Save(ctx context.Context, description string) error {
	w.mu.Lock()
	site := w.state
	w.mu.Unlock()

	res, err := w.backend.SaveSite(ctx, w.projectID, site, description)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.errMsg = Message(err)
		return err
	}
	if res != nil && res.Version != nil {
		w.versionID = res.Version.ID
	}
	w.errMsg = ""
	return nil
}

// State returns the current editor state and the version it came from.
func (w *Workspace) State() (types.Site, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state, w.versionID
}

// Err returns the message of the latest failure, or "" after a success.
func (w *Workspace) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// Message renders err for a person using the editor.
func Message(err error) string {
	switch apperr.KindOf(err) {
	case "":
		return ""
	case apperr.KindNotFound:
		return "This project or version no longer exists."
	case apperr.KindUnauthorized:
		return "You do not have access to this project."
	case apperr.KindInvalidInput:
		return "The request was rejected: " + err.Error()
	case apperr.KindIncomplete:
		return "This version is still being written. Try again shortly."
	default:
		return "Could not reach the site store. Check your connection and try again."
	}
}
