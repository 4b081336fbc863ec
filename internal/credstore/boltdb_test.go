package credstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workhive/desk/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func identity() *domain.Identity {
	return &domain.Identity{
		ID:        "u1",
		Email:     "a@b.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      domain.RoleFreelancer,
	}
}

func TestSaveAndLoadPair(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save(domain.Credentials{Token: "T1", Identity: identity()}))

	creds, err := s.Load()
	require.NoError(t, err)
	require.True(t, creds.Complete())
	require.Equal(t, "T1", creds.Token)
	require.Equal(t, "a@b.com", creds.Identity.Email)
	require.Equal(t, domain.RoleFreelancer, creds.Identity.Role)
}

func TestLoadEmptyStore(t *testing.T) {
	s := openTestStore(t)

	creds, err := s.Load()
	require.NoError(t, err)
	require.False(t, creds.Complete())
}

func TestClearRemovesBothKeys(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save(domain.Credentials{Token: "T1", Identity: identity()}))
	require.NoError(t, s.Clear())

	creds, err := s.Load()
	require.NoError(t, err)
	require.False(t, creds.Complete())
	require.Empty(t, creds.Token)
	require.Nil(t, creds.Identity)
}

func TestClearIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
}

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(domain.Credentials{Token: "T1", Identity: identity()}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	creds, err := reopened.Load()
	require.NoError(t, err)
	require.True(t, creds.Complete())
	require.Equal(t, "T1", creds.Token)
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Store
	require.Error(t, s.Save(domain.Credentials{}))
	_, err := s.Load()
	require.Error(t, err)
	require.Error(t, s.Clear())
	require.NoError(t, s.Close())
}
