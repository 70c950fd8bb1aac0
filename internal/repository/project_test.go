//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskpilot-ai/riskpilot/internal/domain"
	"github.com/riskpilot-ai/riskpilot/internal/testutil"
)

func TestProjectRepository_Create(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectRepository(pool)

	deadline := time.Now().UTC().Truncate(time.Microsecond).AddDate(0, 6, 0)
	project := &domain.Project{
		ID:              uuid.NewString(),
		Name:            "Harbor Expansion",
		Description:     "Port logistics modernization",
		Deadline:        &deadline,
		ParentCompany:   "Meridian Holdings",
		BusinessPartner: "Coastal Engineering",
		Budget:          250000,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}

	err := repo.Create(ctx, project)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, retrieved.ID)
	assert.Equal(t, project.Name, retrieved.Name)
	assert.Equal(t, project.Budget, retrieved.Budget)
	assert.Equal(t, project.ParentCompany, retrieved.ParentCompany)
	require.NotNil(t, retrieved.Deadline)
	assert.True(t, deadline.Equal(*retrieved.Deadline))
}

func TestProjectRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestProjectRepository_GetByID_MalformedID(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectRepository(pool)

	_, err := repo.GetByID(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestProjectRepository_List(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectRepository(pool)

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		p := domain.NewProject(uuid.NewString(), name, time.Now().UTC().Truncate(time.Microsecond))
		require.NoError(t, repo.Create(ctx, p))
	}

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 3)
}

func TestProjectRepository_UpdateActualSpend(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectRepository(pool)

	project := domain.NewProject(uuid.NewString(), "Spend Target", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, project))

	require.NoError(t, repo.UpdateActualSpend(ctx, project.ID, 1234.56))

	retrieved, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1234.56, retrieved.ActualSpend, 0.001)
}

func TestProjectRepository_UpdateActualSpend_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectRepository(pool)

	err := repo.UpdateActualSpend(ctx, uuid.NewString(), 10)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
