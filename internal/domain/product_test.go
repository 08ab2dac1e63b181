package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryImage(t *testing.T) {
	t.Run("no images", func(t *testing.T) {
		p := &Product{}
		assert.Nil(t, p.PrimaryImage())
	})

	t.Run("explicit primary", func(t *testing.T) {
		p := &Product{Images: []ProductImage{
			{URL: "a", StorageKey: "products/a"},
			{URL: "b", StorageKey: "products/b", IsPrimary: true},
		}}
		img := p.PrimaryImage()
		require.NotNil(t, img)
		assert.Equal(t, "b", img.URL)
	})

	t.Run("falls back to first", func(t *testing.T) {
		p := &Product{Images: []ProductImage{
			{URL: "a", StorageKey: "products/a"},
			{URL: "b", StorageKey: "products/b"},
		}}
		img := p.PrimaryImage()
		require.NotNil(t, img)
		assert.Equal(t, "a", img.URL)
	})
}

func TestUserPasswordHashNeverSerialized(t *testing.T) {
	u := User{ID: "u1", Email: "u@example.com", PasswordHash: "$2a$12$hash"}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleUser))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole("seller"))
	assert.False(t, IsValidRole(""))
}
