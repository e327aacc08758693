package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/testutil"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	user := &model.User{
		Name:         "Maria Silva",
		Email:        "maria@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)

	found, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", found.Email)

	found, err = repo.GetByEmail("maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	exists, err := repo.ExistsByEmail(user.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, repo.UpdateFields(user.ID, map[string]interface{}{"role": model.RoleAdmin}))

	found, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, found.Role)
}
