package commands

import (
	"context"

	"github.com/jrsteele09/tenant-auth-server/internal/logger"
	"github.com/jrsteele09/tenant-auth-server/internal/maintenance"
	"github.com/jrsteele09/tenant-auth-server/store/postgres"
)

type MigrateCmd struct {
	DatabaseFlags `embed:""`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	pool, err := postgres.NewPool(ctx, &postgres.PoolConfig{ConnString: c.DatabaseURL, MaxConns: c.MaxConns, MinConns: 1})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return err
	}
	log.Info().Msg("Migrations complete")
	return nil
}

type SeedTenantCmd struct {
	Slug          string `arg:"" help:"tenant slug used in every tenant path"`
	Name          string `help:"display name, defaults to the slug"`
	DatabaseFlags `embed:""`
}

func (c *SeedTenantCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	stores, err := c.open(ctx, true)
	if err != nil {
		return err
	}
	defer stores.Close()

	tenant, created, err := maintenance.SeedTenant(ctx, stores.Tenants, c.Slug, c.Name)
	if err != nil {
		return err
	}
	if !created {
		log.Info().Str("id", tenant.ID).Str("slug", tenant.Slug).Msg("Tenant already exists")
		return nil
	}
	log.Info().Str("id", tenant.ID).Str("slug", tenant.Slug).Str("name", tenant.Name).Msg("Tenant created")
	return nil
}

type BackfillMembershipsCmd struct {
	DryRun        bool `help:"report what would change without writing"`
	DatabaseFlags `embed:""`
}

func (c *BackfillMembershipsCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	stores, err := c.open(ctx, true)
	if err != nil {
		return err
	}
	defer stores.Close()

	report, err := maintenance.BackfillMemberships(ctx, stores.Users, stores.Memberships, c.DryRun)
	if err != nil {
		return err
	}
	log.Info().
		Bool("dryRun", c.DryRun).
		Int("scanned", report.Scanned).
		Int("created", report.Updated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Membership backfill complete")
	return nil
}

type BackfillNamesCmd struct {
	DryRun        bool `help:"report what would change without writing"`
	DatabaseFlags `embed:""`
}

func (c *BackfillNamesCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	stores, err := c.open(ctx, true)
	if err != nil {
		return err
	}
	defer stores.Close()

	report, err := maintenance.BackfillNames(ctx, stores.Users, c.DryRun)
	if err != nil {
		return err
	}
	log.Info().
		Bool("dryRun", c.DryRun).
		Int("scanned", report.Scanned).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Name backfill complete")
	return nil
}
