package db

import (
	"testing"

	"blogroll/internal/config"
	"blogroll/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenMemoryMigrates(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	for _, m := range []interface{}{&models.User{}, &models.Group{}, &models.Post{}, &models.Comment{}, &models.Follow{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestFollowUniqueIndex(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	a := models.User{Username: "a", Password: "x"}
	b := models.User{Username: "b", Password: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	require.NoError(t, db.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error)
	assert.ErrorIs(t, db.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error, gorm.ErrDuplicatedKey)
}

func TestDuplicateUsernameIsTranslated(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.User{Username: "twin", Password: "x"}).Error)
	err = db.Create(&models.User{Username: "twin", Password: "y"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCascadeOnAuthorDelete(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	u := models.User{Username: "writer", Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	p := models.Post{Text: "hello", AuthorID: u.ID}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: p.ID, AuthorID: u.ID, Text: "hi"}).Error)

	require.NoError(t, db.Delete(&u).Error)

	var posts, comments int64
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.Comment{}).Count(&comments)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := Open(config.Database{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
}
