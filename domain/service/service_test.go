package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"goeasy/auth"
	"goeasy/codegen/snowflake"
	dbcore "goeasy/data/db"
	dbbasic "goeasy/data/db/basic"
	ormbasic "goeasy/data/orm/basic"
	"goeasy/data/orm/repo"
	"goeasy/domain/entity"
	"goeasy/errors"
	"goeasy/query"
)

type article struct {
	entity.Model
	Title  string  `db:"title" validate:"required"`
	Author *string `db:"author"`
	Views  int64   `db:"views"`
}

var articlePaths = query.NewPathRegistry[article](
	query.Int64[article]("id", "id", func(a *article) *int64 { return &a.ID }),
	query.String[article]("title", "title", func(a *article) *string { return &a.Title }),
	query.Int64[article]("views", "views", func(a *article) *int64 { return &a.Views }),
)

const articleDDL = `CREATE TABLE article (
	id INTEGER PRIMARY KEY,
	creator INTEGER, create_time DATETIME,
	updater INTEGER, update_time DATETIME,
	is_deleted TEXT, deleter INTEGER, delete_time DATETIME,
	title TEXT, author TEXT, views INTEGER)`

var now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts ...Option) *Service[article, *article] {
	t.Helper()
	d, err := dbbasic.New(dbcore.DBConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	_, err = d.Exec(context.Background(), articleDDL)
	require.NoError(t, err)

	ids, err := snowflake.New(snowflake.DefaultConfig())
	require.NoError(t, err)
	r := repo.New[article](ormbasic.New(d), "article", articlePaths)
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return New[article](r, ids, opts...)
}

// TestService_Save 测试新建与覆盖保存
func TestService_Save(t *testing.T) {
	ctx := auth.WithUserID(context.Background(), 7)
	s := newService(t)

	a, err := s.Save(ctx, &article{Title: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.Equal(t, int64(7), a.Creator)
	assert.Equal(t, int64(7), a.Updater)
	assert.Equal(t, entity.BoolFalse, a.IsDeleted)

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	assert.True(t, now.Equal(got.CreateTime))

	got.Views = 3
	_, err = s.Save(auth.WithUserID(context.Background(), 8), got)
	require.NoError(t, err)
	got, err = s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Views)
	assert.Equal(t, int64(7), got.Creator)
	assert.Equal(t, int64(8), got.Updater)

	ok, err := s.Exists(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Exists(ctx, a.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestService_SaveValidation 测试写前校验
func TestService_SaveValidation(t *testing.T) {
	s := newService(t)

	_, err := s.Save(context.Background(), &article{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	_, err = s.Save(context.Background(), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput))

	n, err := s.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// TestService_SaveInBatch 测试分块批量保存
func TestService_SaveInBatch(t *testing.T) {
	ctx := context.Background()
	s := newService(t, WithBatchSize(2))

	var items []*article
	for i := 0; i < 5; i++ {
		items = append(items, &article{Title: fmt.Sprintf("a%d", i), Views: int64(i)})
	}
	saved, err := s.SaveInBatch(ctx, items)
	require.NoError(t, err)
	assert.Len(t, saved, 5)

	all, err := s.FindAll(ctx, nil, query.ByID())
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, entity.Anonymous, all[0].Creator)

	// 第二块中的非法实体使后续块不再写入
	bad := []*article{{Title: "b0"}, {Title: "b1"}, {Title: "b2"}, {}, {Title: "b4"}}
	saved, err = s.SaveInBatch(ctx, bad)
	require.Error(t, err)
	assert.Len(t, saved, 2)

	n, err := s.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

// TestService_Update 测试按主键更新
func TestService_Update(t *testing.T) {
	ctx := auth.WithUserID(context.Background(), 1)
	s := newService(t)
	author := "ann"
	a, err := s.Save(ctx, &article{Title: "draft", Author: &author, Views: 10})
	require.NoError(t, err)

	patch := &article{Title: "final"}
	patch.ID = 999
	patch.Creator = 42
	_, err = s.Update(auth.WithUserID(context.Background(), 2), a.ID, patch, "Views")
	require.NoError(t, err)

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Nil(t, got.Author)
	assert.Equal(t, int64(10), got.Views)
	assert.Equal(t, int64(1), got.Creator)
	assert.Equal(t, int64(2), got.Updater)

	_, err = s.Update(ctx, a.ID+1, patch)
	assert.True(t, errors.IsNotFound(err))
}

// TestService_Delete 测试逻辑删除与物理删除
func TestService_Delete(t *testing.T) {
	ctx := auth.WithUserID(context.Background(), 5)
	s := newService(t)
	a, err := s.Save(ctx, &article{Title: "one"})
	require.NoError(t, err)
	b, err := s.Save(ctx, &article{Title: "two"})
	require.NoError(t, err)

	require.NoError(t, s.LogicalDeleteByID(ctx, a.ID))
	require.NoError(t, s.LogicalDeleteByID(ctx, a.ID))
	_, err = s.FindByID(ctx, a.ID)
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, s.DeleteByID(ctx, b.ID))
	require.NoError(t, s.DeleteByID(ctx, b.ID))

	page, err := s.FindPage(ctx, nil, query.Pageable{Size: 10, Sort: query.ByID()})
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
}
