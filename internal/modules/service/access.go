package service

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"go.uber.org/zap"
)

type Action int

const (
	ActionRead Action = iota
	ActionWrite
	// ActionAdmin covers changing access and deleting the project.
	ActionAdmin
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionWrite:
		return "write"
	case ActionAdmin:
		return "administer"
	}
	return "unknown"
}

// Allowed reports whether who may perform act on p. Owners may do anything,
// collaborators read and write, and anyone may read a published project.
func Allowed(p *model.Project, who model.Principal, act Action) bool {
	if who != "" && p.Owner == who {
		return true
	}
	switch act {
	case ActionRead:
		return p.Published || isCollaborator(p, who)
	case ActionWrite:
		return isCollaborator(p, who)
	default:
		return false
	}
}

func isCollaborator(p *model.Project, who model.Principal) bool {
	if who == "" {
		return false
	}
	return slices.Contains(p.CollaboratorSet(), who)
}

type AccessService interface {
	// Authorize loads the project and checks act for who. A missing project
	// is NotFound, a denied action Unauthorized.
	Authorize(ctx context.Context, projectID uuid.UUID, who model.Principal, act Action) (*model.Project, error)
	// SetProjectAccess replaces the collaborator set. It reports false for an
	// unknown project or a caller that is not the owner.
	SetProjectAccess(ctx context.Context, projectID uuid.UUID, caller model.Principal, principals []model.Principal) bool
}

type accessService struct {
	r   repo.ProjectRepo
	log *zap.Logger
}

func NewAccessService(r repo.ProjectRepo, log *zap.Logger) AccessService {
	return &accessService{r: r, log: log}
}

func (s *accessService) Authorize(ctx context.Context, projectID uuid.UUID, who model.Principal, act Action) (*model.Project, error) {
	p, err := s.r.Get(ctx, projectID)
	if err != nil {
		return nil, apperr.FromDB("get project", err)
	}
	if !Allowed(p, who, act) {
		return nil, apperr.Unauthorized("authorize", "principal %q may not %s project %s", who, act, projectID)
	}
	return p, nil
}

func (s *accessService) SetProjectAccess(ctx context.Context, projectID uuid.UUID, caller model.Principal, principals []model.Principal) bool {
	p, err := s.r.Get(ctx, projectID)
	if err != nil {
		s.log.Sugar().Debugw("set access on unreadable project", "project_id", projectID, "err", err)
		return false
	}
	if caller == "" || p.Owner != caller {
		return false
	}

	if err := s.r.ReplaceCollaborators(ctx, projectID, normalizePrincipals(p.Owner, principals)); err != nil {
		s.log.Sugar().Warnw("replace collaborators", "project_id", projectID, "err", err)
		return false
	}
	return true
}

// normalizePrincipals trims, drops blanks and the owner, and removes
// duplicates while keeping first-seen order.
func normalizePrincipals(owner model.Principal, in []model.Principal) []model.Principal {
	out := make([]model.Principal, 0, len(in))
	seen := make(map[model.Principal]struct{}, len(in))
	for _, p := range in {
		p = model.Principal(strings.TrimSpace(string(p)))
		if p == "" || p == owner {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
