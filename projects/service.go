package projects

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/pkg/errors"
)

var (
	ErrNameRequired    = apperrors.Validation("Project name is required")
	ErrProjectNotFound = apperrors.NotFound("Project not found")
)

// Service applies validation on top of the repo. Callers are expected to have authorised the tenant already.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, tenantID, name, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	p := &Project{TenantID: tenantID, Name: name, Description: description}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Server(errors.Wrap(err, "[projects.Create] failed to store project"))
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*Project, error) {
	p, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, s.mapErr(err, "[projects.Get]")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]*Project, error) {
	list, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Server(errors.Wrap(err, "[projects.List] failed to list projects"))
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id string, update Update) (*Project, error) {
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, ErrNameRequired
		}
		update.Name = &trimmed
	}
	p, err := s.repo.Update(ctx, tenantID, id, update)
	if err != nil {
		return nil, s.mapErr(err, "[projects.Update]")
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return s.mapErr(err, "[projects.Delete]")
	}
	return nil
}

func (s *Service) mapErr(err error, op string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return ErrProjectNotFound
	}
	return apperrors.Server(errors.Wrap(err, op))
}
