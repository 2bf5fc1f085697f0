package main

import (
	"context"
	"testing"

	"blogroll/internal/db"
	"blogroll/internal/models"
	"blogroll/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed(t *testing.T) {
	utils.PasswordCost = bcrypt.MinCost
	gdb, err := db.OpenMemory()
	require.NoError(t, err)

	require.NoError(t, seed(context.Background(), gdb, 3, 2, 12))

	var users, posts, selfFollows int64
	gdb.Model(&models.User{}).Count(&users)
	gdb.Model(&models.Post{}).Count(&posts)
	gdb.Model(&models.Follow{}).Where("user_id = author_id").Count(&selfFollows)
	assert.Equal(t, int64(3), users)
	assert.Equal(t, int64(12), posts)
	assert.Zero(t, selfFollows)
}
