package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-caltemp/internal/store"
	"github.com/zalando/go-keyring"
)

func TestKeyring_Lifecycle(t *testing.T) {
	keyring.MockInit()
	k := store.NewKeyring()

	key, err := k.APIKey()
	require.NoError(t, err)
	assert.Empty(t, key, "missing key is not an error")

	require.NoError(t, k.SetAPIKey("  sk-or-v1-abc \n"))
	key, err = k.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-or-v1-abc", key)

	require.NoError(t, k.DeleteAPIKey())
	key, err = k.APIKey()
	require.NoError(t, err)
	assert.Empty(t, key)

	assert.NoError(t, k.DeleteAPIKey(), "deleting twice is fine")
}

func TestKeyring_RejectsEmpty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, store.NewKeyring().SetAPIKey("   "))
}

func TestKeyring_BackendFailure(t *testing.T) {
	keyring.MockInitWithError(assert.AnError)
	k := store.NewKeyring()

	_, err := k.APIKey()
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, k.SetAPIKey("sk"), assert.AnError)
	assert.ErrorIs(t, k.DeleteAPIKey(), assert.AnError)
}
