package database

import (
	"path/filepath"
	"testing"

	"mathdrill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUsers(t *testing.T) {
	store := openTestStore(t)

	id, err := store.CreateUser("masha", "secret")
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = store.CreateUser("masha", "other")
	assert.ErrorIs(t, err, ErrUserExists)

	user, err := store.GetUser("masha")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
	assert.NotEqual(t, "secret", user.Password)
	assert.True(t, CheckPasswordHash("secret", user.Password))
	assert.False(t, CheckPasswordHash("wrong", user.Password))
	assert.NotEmpty(t, user.CreatedAt)

	missing, err := store.GetUser("petya")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAttempts(t *testing.T) {
	store := openTestStore(t)

	first := &models.Attempt{
		ID: "a1", UserID: 1, SessionID: "s1", Operation: "multiplication",
		Expression: "2 * 5", Solved: "10", Answer: "10", Correct: true, ElapsedMS: 2300, Speed: "fast",
	}
	second := &models.Attempt{
		ID: "a2", UserID: 1, SessionID: "s1", Operation: "multiplication",
		Expression: "3 * 5", Solved: "15", Answer: "14", Correct: false, ElapsedMS: 11000, Speed: "slow",
	}
	other := &models.Attempt{
		ID: "b1", UserID: 2, SessionID: "s2", Operation: "sum",
		Expression: "1 + 1", Solved: "2", Answer: "2", Correct: true, ElapsedMS: 800, Speed: "fast",
	}

	for _, a := range []*models.Attempt{first, second, other} {
		require.NoError(t, store.SaveAttempt(a))
		assert.NotEmpty(t, a.CreatedAt)
	}

	attempts, err := store.GetAttempts(1)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, *first, attempts[0])
	assert.Equal(t, *second, attempts[1])

	none, err := store.GetAttempts(99)
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Error(t, store.SaveAttempt(first), "повторный ID должен отвергаться")
}
