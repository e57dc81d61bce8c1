package response

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeasy/errors"
	"goeasy/i18n"
)

type item struct {
	ID    int64
	Title string
	Note  *string
}

type itemResponse struct {
	DataResponse
	Title string `json:"title"`
	Note  string `json:"note,omitempty"`
}

// TestCode_Key 测试消息键
func TestCode_Key(t *testing.T) {
	assert.Equal(t, "response.A000200", OK.Key())
	assert.Equal(t, "user.create.success", OK.WithMessageKey("user.create.success").Key())
	assert.Equal(t, "response.A000200", OK.Key())
}

// TestBuild 测试由实体构建响应
func TestBuild(t *testing.T) {
	note := "n"
	r, err := Build[itemResponse](&item{ID: 3, Title: "t", Note: &note}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.ID)
	assert.Equal(t, "t", r.Title)
	assert.Equal(t, "n", r.Note)
	require.NotNil(t, r.Header)
	assert.Equal(t, OK, r.Header.Code)

	internal, err := Build[itemResponse](item{ID: 4}, true)
	require.NoError(t, err)
	assert.Nil(t, internal.Header)

	data, err := json.Marshal(internal)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"title":""}`, string(data))
}

// TestNewPage 测试分页响应
func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, 1, 2, 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.NumberOfElements)
	assert.False(t, p.First)
	assert.False(t, p.Last)
	assert.False(t, p.Empty)

	last := NewPage([]int{5}, 2, 2, 5)
	assert.True(t, last.Last)

	empty := NewPage[int](nil, 0, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.True(t, empty.First)
	assert.True(t, empty.Empty)
	assert.NotNil(t, empty.Content)

	data, err := json.Marshal(NewPage([]string{"a"}, 0, 10, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"header":{"code":{"code":"A000200","success":true}},"content":["a"],"empty":false,
		"size":10,"number":0,"totalElements":1,"totalPages":1,"numberOfElements":1,"first":true,"last":true}`, string(data))
}

// TestFromError 测试错误映射
func TestFromError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"not found", errors.NewError(errors.ErrCodeNotFound, "x"), NotFound, ""},
		{"unauthorized", errors.NewError(errors.ErrCodeUnauthorized, "x"), Unauthorized, ""},
		{"forbidden", errors.NewError(errors.ErrCodeForbidden, "x"), Forbidden, ""},
		{"invalid input", errors.NewError(errors.ErrCodeInvalidInput, "bad page"), BadRequest, "bad page"},
		{"validation", errors.NewError(errors.ErrCodeValidation, "name required"), BadRequest, "name required"},
		{"duplicate", errors.NewError(errors.ErrCodeDuplicate, "x"), Conflict, ""},
		{"unique violation", fmt.Errorf("insert: %w", stdErrors.New("UNIQUE constraint failed: note.id")), Conflict, ""},
		{"database", errors.NewError(errors.ErrCodeDatabase, "boom"), InternalServerError, ""},
		{"plain", assert.AnError, InternalServerError, ""},
		{"code error", NewCodeError(Accepted), Accepted, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromError(tt.err)
			assert.Equal(t, tt.code, r.Header.Code)
			assert.Equal(t, tt.message, r.Header.Message)
		})
	}
}

// TestPrepare 测试消息翻译与状态码
func TestPrepare(t *testing.T) {
	source, err := i18n.Load(fstest.MapFS{
		"messages.yaml": {Data: []byte("response.A000404: 数据不存在")},
	}, i18n.Config{})
	require.NoError(t, err)
	ctx := i18n.WithSource(context.Background(), source)

	r := New(NotFound)
	assert.Equal(t, 404, Prepare(ctx, r))
	assert.Equal(t, "数据不存在", r.Header.Message)

	r = NewWithMessage(OK, "done")
	assert.Equal(t, 200, Prepare(ctx, r))
	assert.Equal(t, "done", r.Header.Message)

	r = New(Accepted)
	assert.Equal(t, 202, Prepare(context.Background(), r))
	assert.Equal(t, "response.A000202", r.Header.Message)

	assert.Equal(t, 200, Prepare(ctx, &Response{}))
}
