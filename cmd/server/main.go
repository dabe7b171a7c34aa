package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/jrsteele09/tenant-auth-server/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug               bool                            `help:"Enable debug logging."`
		Version             kong.VersionFlag
		Serve               commands.ServeCmd               `cmd:"" default:"1" help:"Start the API server"`
		Migrate             commands.MigrateCmd             `cmd:"" help:"Apply pending database migrations"`
		SeedTenant          commands.SeedTenantCmd          `cmd:"" help:"Create a tenant"`
		BackfillMemberships commands.BackfillMembershipsCmd `cmd:"" help:"Create missing memberships from the role stored on each user"`
		BackfillNames       commands.BackfillNamesCmd       `cmd:"" help:"Derive missing user names from email addresses"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("tenant-auth-server"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
