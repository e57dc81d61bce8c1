package query

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeasy/errors"
)

type person struct {
	ID    int64
	Name  string
	Age   int32
	Email *string
}

var people = NewPathRegistry[person](
	Int64("id", "id", func(p *person) *int64 { return &p.ID }),
	String("name", "name", func(p *person) *string { return &p.Name }),
	Int32("age", "age", func(p *person) *int32 { return &p.Age }),
	String("email", "email_address", func(p *person) *string { return p.Email }),
)

func strPtr(s string) *string { return &s }

func fixture() []person {
	return []person{
		{ID: 1, Name: "Smith A", Age: 30, Email: strPtr("a@x.com")},
		{ID: 2, Name: "Jones B", Age: 20},
		{ID: 3, Name: "Smithson C", Age: 40, Email: strPtr("c@y.org")},
	}
}

func filter(t *testing.T, req *QueryRequest) []int64 {
	t.Helper()
	pred, _, err := Translate(req, people)
	require.NoError(t, err)
	var ids []int64
	for _, p := range fixture() {
		if pred.Eval(&p) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// TestTranslate_Contains contains 忽略大小写
func TestTranslate_Contains(t *testing.T) {
	req := (&QueryRequest{}).Where("name", OpContains, "smith")
	assert.Equal(t, []int64{1, 3}, filter(t, req))

	pred, _, err := Translate(req, people)
	require.NoError(t, err)
	sql, args := pred.ToSQL()
	assert.Equal(t, `LOWER(name) LIKE ? ESCAPE '\'`, sql)
	assert.Equal(t, []any{"%smith%"}, args)
}

// TestTranslate_StringOperations 测试字符串操作
func TestTranslate_StringOperations(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		val  string
		want []int64
	}{
		{"eq", OpEq, "Jones B", []int64{2}},
		{"ne", OpNe, "Jones B", []int64{1, 3}},
		{"like", OpLike, "Smith%", []int64{1, 3}},
		{"like single char", OpLike, "Smith _", []int64{1}},
		{"not like", OpNotLike, "Smith%", []int64{2}},
		{"starts with", OpStartsWith, "jones", []int64{2}},
		{"ends with", OpEndsWith, "son c", []int64{3}},
		{"contains literal percent", OpContains, "%", nil},
		{"ordering op ignored", OpGt, "A", []int64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := (&QueryRequest{}).Where("name", tt.op, tt.val)
			assert.Equal(t, tt.want, filter(t, req))
		})
	}
}

// TestTranslate_NullChecks 空值判断
func TestTranslate_NullChecks(t *testing.T) {
	assert.Equal(t, []int64{2}, filter(t, (&QueryRequest{}).Where("email", OpIsNull, "")))
	assert.Equal(t, []int64{1, 3}, filter(t, (&QueryRequest{}).Where("email", OpNotNull, "")))
	// 空值不满足比较
	assert.Equal(t, []int64{1, 3}, filter(t, (&QueryRequest{}).Where("email", OpNe, "zzz")))

	pred, _, err := Translate((&QueryRequest{}).Where("email", OpIsNull, ""), people)
	require.NoError(t, err)
	sql, args := pred.ToSQL()
	assert.Equal(t, "email_address IS NULL", sql)
	assert.Empty(t, args)
}

// TestTranslate_Numbers 数值比较
func TestTranslate_Numbers(t *testing.T) {
	tests := []struct {
		op   Operation
		val  string
		want []int64
	}{
		{OpEq, "30", []int64{1}},
		{OpNe, "30", []int64{2, 3}},
		{OpGt, "30", []int64{3}},
		{OpGoe, "30", []int64{1, 3}},
		{OpLt, "30", []int64{2}},
		{OpLoe, " 30 ", []int64{1, 2}},
		{OpContains, "3", []int64{1, 2, 3}},
		{OpIsNull, "", []int64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, filter(t, (&QueryRequest{}).Where("age", tt.op, tt.val)))
		})
	}
}

// TestTranslate_Combined 多个条件以 AND 组合
func TestTranslate_Combined(t *testing.T) {
	req := (&QueryRequest{}).
		Where("name", OpStartsWith, "smith").
		Where("age", OpGt, "35").
		Where("ghost", OpEq, "x")
	assert.Equal(t, []int64{3}, filter(t, req))

	pred, _, err := Translate(req, people)
	require.NoError(t, err)
	sql, args := pred.ToSQL()
	assert.Equal(t, `LOWER(name) LIKE ? ESCAPE '\' AND age > ?`, sql)
	assert.Equal(t, []any{"smith%", int32(35)}, args)
}

// TestTranslate_UnknownProperty 未知属性等价于无过滤
func TestTranslate_UnknownProperty(t *testing.T) {
	pred, _, err := Translate((&QueryRequest{}).Where("ghost", OpEq, "x"), people)
	require.NoError(t, err)
	assert.True(t, IsEmpty(pred))
	sql, args := pred.ToSQL()
	assert.Empty(t, sql)
	assert.Nil(t, args)
	assert.Equal(t, []int64{1, 2, 3}, filter(t, (&QueryRequest{}).Where("ghost", OpEq, "x")))
}

// TestTranslate_Errors 数值解析失败、缺少值、包外路径类型
func TestTranslate_Errors(t *testing.T) {
	_, _, err := Translate((&QueryRequest{}).Where("age", OpEq, "abc"), people)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeParse))

	_, _, err = Translate((&QueryRequest{}).Where("age", OpEq, "3000000000"), people)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeParse))

	_, _, err = Translate((&QueryRequest{}).Where("id", OpEq, "3000000000"), people)
	assert.NoError(t, err)

	_, _, err = Translate((&QueryRequest{}).Where("age", OpGt, ""), people)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), `"age"`)

	registry := NewPathRegistry[person](foreignPath{})
	_, _, err = Translate((&QueryRequest{}).Where("foreign", OpEq, "x"), registry)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeUnsupportedType))
	assert.Contains(t, err.Error(), "foreignPath")
}

type foreignPath struct{}

func (foreignPath) Property() string { return "foreign" }
func (foreignPath) Column() string   { return "foreign" }

// TestParseSort 排序串解析
func TestParseSort(t *testing.T) {
	s := ParseSort("name,age:desc")
	assert.Equal(t, []Order{{Property: "name"}, {Property: "age", Desc: true}}, s.Orders)
	assert.Equal(t, "name ASC, age DESC", s.String())

	assert.Equal(t, ByID(), ParseSort(""))
	assert.Equal(t, ByID(), ParseSort(" , "))
	assert.Equal(t, "name DESC, age ASC", ParseSort("name:DESC,age:garbage").String())

	_, sort, err := Translate(&QueryRequest{}, people)
	require.NoError(t, err)
	assert.Equal(t, "id ASC", sort.String())
}

// TestPathRegistry 测试属性表
func TestPathRegistry(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "age", "email"}, people.Properties())
	assert.Equal(t, "email_address", people.Column("email"))
	assert.Equal(t, "unknown", people.Column("unknown"))

	assert.Panics(t, func() {
		NewPathRegistry[person](
			String("name", "name", func(p *person) *string { return &p.Name }),
			String("name", "name2", func(p *person) *string { return &p.Name }),
		)
	})
	assert.Panics(t, func() {
		NewPathRegistry[person](String("name", "name; drop", func(p *person) *string { return &p.Name }))
	})
}

// TestParseValues 请求参数解析
func TestParseValues(t *testing.T) {
	values := url.Values{
		"_order":         {"name:desc"},
		"_unknown":       {"x"},
		"name:contains":  {"smith"},
		"age:GT":         {"18"},
		"email:is_null":  {""},
		"nick":           {""},
		"status:between": {"1"},
		"city":           {"paris", "rome"},
	}
	req := ParseValues(values)
	assert.Equal(t, "name:desc", req.Order)
	assert.Equal(t, []Criterion{
		{Property: "age", Operation: OpGt, Value: "18"},
		{Property: "city", Operation: OpEq, Value: "paris"},
		{Property: "email", Operation: OpIsNull, Value: ""},
		{Property: "name", Operation: OpContains, Value: "smith"},
	}, req.Criteria)
}

// TestParsePageValues 分页参数解析
func TestParsePageValues(t *testing.T) {
	req, err := ParsePageValues(url.Values{"_page": {"2"}, "_size": {"50"}})
	require.NoError(t, err)
	p := req.Pageable()
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 50, p.Size)
	assert.Equal(t, 100, p.Offset())

	req, err = ParsePageValues(url.Values{"_page": {"-1"}, "_size": {"0"}})
	require.NoError(t, err)
	assert.Equal(t, 0, req.Page)
	assert.Equal(t, DefaultPageSize, req.Size)

	_, err = ParsePageValues(url.Values{"_page": {"x"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput))

	p = (&PageQueryRequest{Page: -3}).Pageable()
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, ByID(), p.Sort)
}

// TestParsePageValues_Bounds 测试超大分页参数被截断且偏移量不溢出
func TestParsePageValues_Bounds(t *testing.T) {
	req, err := ParsePageValues(url.Values{"_size": {"1099511627776"}})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, req.Size)
	assert.Equal(t, MaxPageSize, req.Pageable().Size)

	req, err = ParsePageValues(url.Values{"_page": {"9223372036854775807"}, "_size": {"1000"}})
	require.NoError(t, err)
	p := req.Pageable()
	assert.Equal(t, MaxOffset/MaxPageSize, p.Page)
	assert.LessOrEqual(t, p.Offset(), MaxOffset)
	assert.GreaterOrEqual(t, p.Offset(), 0)

	_, err = ParsePageValues(url.Values{"_page": {"99999999999999999999"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput))

	raw := Pageable{Page: math.MaxInt, Size: math.MaxInt}
	assert.Equal(t, MaxOffset, raw.Offset())
	assert.Equal(t, 0, Pageable{Page: -1, Size: 10}.Offset())
}
