// Package maintenance holds the one-off data tasks run from the command line
package maintenance

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	"github.com/jrsteele09/tenant-auth-server/tenants"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Report counts what a backfill did
type Report struct {
	Scanned int
	Updated int
	Skipped int
	Failed  int
}

// SeedTenant creates the tenant named by slug. An existing tenant with the same slug is returned unchanged
// with created set to false.
func SeedTenant(ctx context.Context, repo tenants.Repo, slug, name string) (tenant *tenants.Tenant, created bool, err error) {
	slug = strings.TrimSpace(slug)
	if err := tenants.ValidateSlug(slug); err != nil {
		return nil, false, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = slug
	}

	existing, err := repo.GetBySlug(ctx, slug)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, false, errors.Wrapf(err, "[SeedTenant] lookup %s", slug)
	}

	tenant = &tenants.Tenant{Slug: slug, Name: name, CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, tenant); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// created concurrently
			existing, getErr := repo.GetBySlug(ctx, slug)
			if getErr != nil {
				return nil, false, errors.Wrapf(getErr, "[SeedTenant] reload %s", slug)
			}
			return existing, false, nil
		}
		return nil, false, errors.Wrapf(err, "[SeedTenant] create %s", slug)
	}
	return tenant, true, nil
}

// BackfillMemberships gives every user a membership in their primary tenant, using the legacy role on the
// user record. Users that already have one are skipped, so the task can be re-run. A failure for one user is
// logged and counted but does not stop the run.
func BackfillMemberships(ctx context.Context, userRepo users.Repo, memberRepo memberships.Repo, dryRun bool) (Report, error) {
	var report Report
	all, err := userRepo.List(ctx)
	if err != nil {
		return report, errors.Wrap(err, "[BackfillMemberships] list users")
	}

	for _, u := range all {
		report.Scanned++
		logger := log.With().Str("user", u.ID).Str("tenant", u.TenantID).Logger()

		_, err := memberRepo.GetByTenantUser(ctx, u.TenantID, u.ID)
		if err == nil {
			report.Skipped++
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			report.Failed++
			logger.Error().Err(err).Msg("membership lookup failed")
			continue
		}

		role := u.Role
		if _, ok := users.ParseRole(string(role)); !ok {
			role = users.RoleUser
		}
		if dryRun {
			report.Updated++
			logger.Info().Str("role", string(role)).Msg("would create membership")
			continue
		}

		err = memberRepo.Create(ctx, &memberships.Membership{
			TenantID:  u.TenantID,
			UserID:    u.ID,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		})
		switch {
		case err == nil:
			report.Updated++
			logger.Info().Str("role", string(role)).Msg("membership created")
		case errors.Is(err, apperrors.ErrDuplicate):
			report.Skipped++
		default:
			report.Failed++
			logger.Error().Err(err).Msg("membership create failed")
		}
	}
	return report, nil
}

// BackfillNames sets the name of every user without one to the local part of their email
func BackfillNames(ctx context.Context, userRepo users.Repo, dryRun bool) (Report, error) {
	var report Report
	all, err := userRepo.List(ctx)
	if err != nil {
		return report, errors.Wrap(err, "[BackfillNames] list users")
	}

	for _, u := range all {
		report.Scanned++
		if strings.TrimSpace(u.Name) != "" {
			report.Skipped++
			continue
		}
		name := users.NameFromEmail(u.Email)
		if dryRun {
			report.Updated++
			log.Info().Str("user", u.ID).Str("name", name).Msg("would set name")
			continue
		}
		if err := userRepo.UpdateName(ctx, u.ID, name); err != nil {
			report.Failed++
			log.Error().Err(err).Str("user", u.ID).Msg("name update failed")
			continue
		}
		report.Updated++
	}
	return report, nil
}
