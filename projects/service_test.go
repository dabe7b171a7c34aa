package projects_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/tenant-auth-server/internal/utils"
	"github.com/jrsteele09/tenant-auth-server/projects"
	projectrepofake "github.com/jrsteele09/tenant-auth-server/projects/repofake"
	"github.com/stretchr/testify/require"
)

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := projects.NewService(projectrepofake.NewFakeProjectRepo())

	t.Run("name is required", func(t *testing.T) {
		_, err := svc.Create(ctx, "t1", "   ", "")
		require.ErrorIs(t, err, projects.ErrNameRequired)
	})

	p, err := svc.Create(ctx, "t1", " Apollo ", "moon")
	require.NoError(t, err)
	require.Equal(t, "Apollo", p.Name)

	t.Run("get is tenant scoped", func(t *testing.T) {
		got, err := svc.Get(ctx, "t1", p.ID)
		require.NoError(t, err)
		require.Equal(t, p.ID, got.ID)

		_, err = svc.Get(ctx, "t2", p.ID)
		require.ErrorIs(t, err, projects.ErrProjectNotFound)
	})

	t.Run("update changes only provided fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, "t1", p.ID, projects.Update{Description: utils.Ptr("mars")})
		require.NoError(t, err)
		require.Equal(t, "Apollo", updated.Name)
		require.Equal(t, "mars", updated.Description)

		_, err = svc.Update(ctx, "t1", p.ID, projects.Update{Name: utils.Ptr("")})
		require.ErrorIs(t, err, projects.ErrNameRequired)
	})

	t.Run("list is newest first", func(t *testing.T) {
		time.Sleep(time.Millisecond)
		second, err := svc.Create(ctx, "t1", "Gemini", "")
		require.NoError(t, err)
		_, err = svc.Create(ctx, "t2", "Other", "")
		require.NoError(t, err)

		list, err := svc.List(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, second.ID, list[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, "t2", p.ID), projects.ErrProjectNotFound)
		require.NoError(t, svc.Delete(ctx, "t1", p.ID))
		_, err := svc.Get(ctx, "t1", p.ID)
		require.ErrorIs(t, err, projects.ErrProjectNotFound)
	})
}
