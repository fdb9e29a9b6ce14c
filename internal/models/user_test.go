package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PublicOmitsHash(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	u := &User{
		ID:           7,
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$secretdigest",
		FullName:     "Alice A",
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Hour),
	}

	body, err := json.Marshal(u.Public())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))

	assert.Equal(t, float64(7), got["id"])
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "alice@x.com", got["email"])
	assert.Equal(t, "Alice A", got["fullName"])
	assert.Contains(t, got, "createdAt")
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "PasswordHash")
	assert.NotContains(t, got, "updatedAt")
	assert.NotContains(t, string(body), u.PasswordHash)
}

func TestUser_MarshalSkipsHash(t *testing.T) {
	u := &User{ID: 1, Username: "bob", PasswordHash: "digest"}

	body, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "digest")
}

func TestPublicUser_PublicReturnsCopy(t *testing.T) {
	p := &PublicUser{ID: 3, Username: "carol"}

	cp := p.Public()
	cp.Username = "mallory"

	assert.Equal(t, "carol", p.Username)
	assert.Equal(t, int64(3), cp.ID)
}
