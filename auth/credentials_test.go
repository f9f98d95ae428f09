package auth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/boardctl/auth"
	"github.com/c360studio/boardctl/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials.json")
	file := auth.NewCredentialsFile(path)

	loaded, err := file.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing file is not an error")

	creds := &auth.Credentials{
		Token: "tok-123",
		User:  model.User{ID: "U1", Username: "alice"},
	}
	require.NoError(t, file.Save(creds))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err = file.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, creds.Token, loaded.Token)
	assert.Equal(t, creds.User, loaded.User)
}

func TestCredentialsFile_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	file := auth.NewCredentialsFile(path)

	require.NoError(t, file.Clear(), "clearing an absent file is not an error")

	require.NoError(t, file.Save(&auth.Credentials{Token: "tok"}))
	require.NoError(t, file.Clear())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
