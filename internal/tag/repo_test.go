package tag

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bloghub/pkg/database"
	"bloghub/pkg/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewRepo(db)
	ctx := context.Background()

	created, err := r.Create(ctx, "golang")
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "golang", got.Name)

	missing, err := r.GetByID(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateDuplicateName(t *testing.T) {
	db := newTestDB(t)
	r := NewRepo(db)
	ctx := context.Background()

	_, err := r.Create(ctx, "once")
	require.NoError(t, err)

	_, err = r.Create(ctx, "once")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	r := NewRepo(db)
	ctx := context.Background()

	created, err := r.Create(ctx, "golnag")
	require.NoError(t, err)

	name := "golang"
	updated, err := r.Update(ctx, created.ID, &name)
	require.NoError(t, err)
	assert.Equal(t, "golang", updated.Name)

	// omitted name leaves the tag untouched
	same, err := r.Update(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "golang", same.Name)

	_, err = r.Update(ctx, 404, &name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDetachesEverywhere(t *testing.T) {
	db := newTestDB(t)
	r := NewRepo(db)
	ctx := context.Background()

	tag, err := r.Create(ctx, "shared")
	require.NoError(t, err)

	post := models.Post{Title: "a post", Tags: []models.Tag{*tag}}
	require.NoError(t, db.Create(&post).Error)
	series := models.Series{Name: "a series", Tags: []models.Tag{*tag}}
	require.NoError(t, db.Create(&series).Error)

	require.NoError(t, r.Delete(ctx, tag.ID))

	var postJoins, seriesJoins int64
	require.NoError(t, db.Table("post_tags").Count(&postJoins).Error)
	require.NoError(t, db.Table("series_tags").Count(&seriesJoins).Error)
	assert.Zero(t, postJoins)
	assert.Zero(t, seriesJoins)

	// the post and series themselves survive
	var posts, seriesCount int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Series{}).Count(&seriesCount).Error)
	assert.EqualValues(t, 1, posts)
	assert.EqualValues(t, 1, seriesCount)

	assert.ErrorIs(t, r.Delete(ctx, tag.ID), ErrNotFound)
}

func TestListPagination(t *testing.T) {
	db := newTestDB(t)
	r := NewRepo(db)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		_, err := r.Create(ctx, fmt.Sprintf("tag %02d", i))
		require.NoError(t, err)
	}

	page1, maxPage, err := r.List(ctx, ListQuery{Page: 1})
	require.NoError(t, err)
	require.Len(t, page1, 10)
	assert.Equal(t, 2, maxPage)
	assert.Equal(t, "tag 12", page1[0].Name)

	page2, _, err := r.List(ctx, ListQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
}

func TestListNameFilter(t *testing.T) {
	db := newTestDB(t)
	r := NewRepo(db)
	ctx := context.Background()

	_, err := r.Create(ctx, "Databases")
	require.NoError(t, err)
	_, err = r.Create(ctx, "Networking")
	require.NoError(t, err)

	tags, _, err := r.List(ctx, ListQuery{Name: "base"})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Databases", tags[0].Name)
}

func TestSearchByName(t *testing.T) {
	db := newTestDB(t)
	r := NewRepo(db)
	ctx := context.Background()

	first, err := r.Create(ctx, "go basics")
	require.NoError(t, err)
	second, err := r.Create(ctx, "go advanced")
	require.NoError(t, err)

	tags, err := r.SearchByName(ctx, "GO")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, second.ID, tags[0].ID) // id desc
	assert.Equal(t, first.ID, tags[1].ID)
}

func TestUniqueNameProbe(t *testing.T) {
	db := newTestDB(t)
	r := NewRepo(db)
	ctx := context.Background()

	_, err := r.Create(ctx, "taken")
	require.NoError(t, err)

	free, err := r.UniqueName(ctx, "taken")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = r.UniqueName(ctx, "available")
	require.NoError(t, err)
	assert.True(t, free)
}
