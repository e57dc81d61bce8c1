package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	dbcore "goeasy/data/db"
	dbbasic "goeasy/data/db/basic"
	ormbasic "goeasy/data/orm/basic"
	"goeasy/domain/entity"
	"goeasy/errors"
	"goeasy/query"
)

type note struct {
	entity.Model
	Title    string `db:"title"`
	Priority int32  `db:"priority"`
}

var notePaths = query.NewPathRegistry[note](
	query.Int64[note]("id", "id", func(n *note) *int64 { return &n.ID }),
	query.String[note]("title", "title", func(n *note) *string { return &n.Title }),
	query.Int32[note]("priority", "priority", func(n *note) *int32 { return &n.Priority }),
)

const noteDDL = `CREATE TABLE note (
	id INTEGER PRIMARY KEY,
	creator INTEGER, create_time DATETIME,
	updater INTEGER, update_time DATETIME,
	is_deleted TEXT, deleter INTEGER, delete_time DATETIME,
	title TEXT, priority INTEGER)`

var created = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *Repo[note] {
	t.Helper()
	ctx := context.Background()
	d, err := dbbasic.New(dbcore.DBConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	_, err = d.Exec(ctx, noteDDL)
	require.NoError(t, err)

	r := New[note](ormbasic.New(d), "note", notePaths)
	var notes []*note
	for i, title := range []string{"Learn Go", "Buy milk", "Go shopping"} {
		n := &note{Title: title, Priority: int32(i + 1)}
		n.SetID(int64(i + 1))
		n.MarkCreated(100, created)
		notes = append(notes, n)
	}
	require.NoError(t, r.Insert(ctx, notes...))
	return r
}

func translate(t *testing.T, req *query.QueryRequest) (query.Predicate[note], query.Sort) {
	t.Helper()
	pred, sort, err := query.Translate(req, notePaths)
	require.NoError(t, err)
	return pred, sort
}

// TestRepo_FindAll 测试条件与排序查询
func TestRepo_FindAll(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	assert.True(t, r.SoftDelete())

	req := (&query.QueryRequest{Order: "priority:desc"}).Where("title", query.OpContains, "go")
	pred, sort := translate(t, req)
	items, err := r.FindAll(ctx, pred, sort)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Go shopping", items[0].Title)
	assert.Equal(t, "Learn Go", items[1].Title)
	assert.True(t, created.Equal(items[1].CreateTime))
	assert.Equal(t, entity.BoolFalse, items[1].IsDeleted)
	assert.Nil(t, items[1].Deleter)

	// 非法排序属性被丢弃
	items, err = r.FindAll(ctx, nil, query.ParseSort("priority; DROP TABLE note,id:desc"))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[0].ID)

	n, err := r.Count(ctx, pred)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err := r.Exists(ctx, query.And(pred, mustPredicate(t, "priority", query.OpGt, "5")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func mustPredicate(t *testing.T, property string, op query.Operation, value string) query.Predicate[note] {
	t.Helper()
	pred, err := query.TranslateCriteria([]query.Criterion{{Property: property, Operation: op, Value: value}}, notePaths)
	require.NoError(t, err)
	return pred
}

// TestRepo_FindPage 测试分页
func TestRepo_FindPage(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	page, err := r.FindPage(ctx, query.And[note](), query.Pageable{Page: 0, Size: 2, Sort: query.ByID()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.NumberOfElements())
	assert.True(t, page.IsFirst())
	assert.False(t, page.IsLast())

	page, err = r.FindPage(ctx, nil, query.Pageable{Page: 1, Size: 2, Sort: query.ByID()})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(3), page.Content[0].ID)
	assert.True(t, page.IsLast())

	page, err = r.FindPage(ctx, nil, query.Pageable{Page: 5, Size: 2})
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
	assert.Equal(t, int64(3), page.TotalElements)

	titles := Map(page, func(n note) string { return n.Title })
	assert.Equal(t, 5, titles.Number)
}

// TestRepo_FindPage_Huge 测试超大分页参数不预分配内存且偏移量不溢出
func TestRepo_FindPage_Huge(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	page, err := r.FindPage(ctx, nil, query.Pageable{Page: 0, Size: 1 << 40, Sort: query.ByID()})
	require.NoError(t, err)
	assert.Len(t, page.Content, 3)
	assert.Equal(t, 1, page.TotalPages)

	page, err = r.FindPage(ctx, nil, query.Pageable{Page: 1 << 40, Size: 1 << 40})
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
	assert.Equal(t, int64(3), page.TotalElements)
}

// TestRepo_Write 测试更新与删除
func TestRepo_Write(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	n, err := r.FindByID(ctx, 2)
	require.NoError(t, err)
	n.Title = "Buy oat milk"
	n.MarkUpdated(200, created.Add(time.Hour))
	n.Creator = 999
	require.NoError(t, r.Update(ctx, 2, n))

	got, err := r.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.Equal(t, int64(100), got.Creator)
	assert.Equal(t, int64(200), got.Updater)

	err = r.Update(ctx, 42, n)
	assert.True(t, errors.IsNotFound(err))

	ok, err := r.LogicalDelete(ctx, 2, 300, created.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.LogicalDelete(ctx, 2, 300, created)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.FindByID(ctx, 2)
	assert.True(t, errors.IsNotFound(err))
	count, err := r.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	ok, err = r.DeleteByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.DeleteByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestRepo_InsertDuplicate 主键冲突返回 DUPLICATE_ERROR
func TestRepo_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	dup := &note{Title: "again"}
	dup.SetID(1)
	dup.MarkCreated(100, created)
	err := r.Insert(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicate(err))
}

// TestRepo_WithTx 测试事务绑定
func TestRepo_WithTx(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	sess, err := r.Orm().Begin(ctx)
	require.NoError(t, err)
	extra := &note{Title: "draft"}
	extra.SetID(10)
	extra.MarkCreated(1, created)
	require.NoError(t, r.WithTx(sess).Insert(ctx, extra))
	require.NoError(t, sess.Rollback())

	_, err = r.FindByID(ctx, 10)
	assert.True(t, errors.IsNotFound(err))
}
