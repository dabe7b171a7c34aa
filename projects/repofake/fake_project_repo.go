package projectrepofake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/internal/utils"
	"github.com/jrsteele09/tenant-auth-server/projects"
)

var _ projects.Repo = (*FakeProjectRepo)(nil)

type FakeProjectRepo struct {
	projects map[string]*projects.Project
	lock     sync.RWMutex
}

func NewFakeProjectRepo() *FakeProjectRepo {
	return &FakeProjectRepo{
		projects: make(map[string]*projects.Project),
	}
}

func (pr *FakeProjectRepo) Create(_ context.Context, project *projects.Project) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	stored := *project
	pr.projects[project.ID] = &stored
	return nil
}

// lookup must be called with the lock held
func (pr *FakeProjectRepo) lookup(tenantID, id string) (*projects.Project, error) {
	p, ok := pr.projects[id]
	if !ok || p.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (pr *FakeProjectRepo) Get(_ context.Context, tenantID, id string) (*projects.Project, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	p, err := pr.lookup(tenantID, id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (pr *FakeProjectRepo) List(_ context.Context, tenantID string) ([]*projects.Project, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	list := make([]*projects.Project, 0)
	for _, p := range pr.projects {
		if p.TenantID != tenantID {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (pr *FakeProjectRepo) Update(_ context.Context, tenantID, id string, update projects.Update) (*projects.Project, error) {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	p, err := pr.lookup(tenantID, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		p.Name = utils.Value(update.Name)
	}
	if update.Description != nil {
		p.Description = utils.Value(update.Description)
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (pr *FakeProjectRepo) Delete(_ context.Context, tenantID, id string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if _, err := pr.lookup(tenantID, id); err != nil {
		return err
	}
	delete(pr.projects, id)
	return nil
}
