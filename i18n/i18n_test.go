package i18n

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"goeasy/errors"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"i18n/messages.yaml": {Data: []byte(`
response.A000200: OK
greeting: Hello {0}, you are {1}
only.default: base
lucky: _multi
lucky.1: one
lucky.2: two
`)},
		"i18n/messages_en.yaml": {Data: []byte(`
greeting: Hi {0}
user:
  create:
    success: User created
`)},
		"i18n/messages_zh_CN.yml": {Data: []byte(`
response:
  A000200: 成功
greeting: 你好 {0}
user.create.success: 用户已创建
`)},
		"i18n/messages_zh.yaml": {Data: []byte(`
only.zh: 中文
`)},
		"i18n/messages.txt":   {Data: []byte("ignored")},
		"i18n/errors_en.yaml": {Data: []byte("x: y")},
	}
}

func newSource(t *testing.T) *MessageSource {
	t.Helper()
	s, err := Load(testFS(), Config{Basename: "i18n/messages", DefaultLocale: "zh-CN"})
	require.NoError(t, err)
	return s
}

// TestParseLocale 测试语言解析
func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"zh-CN", "zh-CN"},
		{"en", "en"},
		{"zh_CN", "zh-CN"},
		{"en US", "en-US"},
		{"de_DE_1996", "de-DE-1996"},
		{"en_US_WIN", "en-US"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tag, err := ParseLocale(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tag.String())
		})
	}

	for _, bad := range []string{"", "zh;CN", "en_", "zh/CN"} {
		_, err := ParseLocale(bad)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput), bad)
	}
}

// TestMessageSource_Load 测试资源文件加载
func TestMessageSource_Load(t *testing.T) {
	s := newSource(t)

	assert.Equal(t, "zh-CN", s.DefaultLocale().String())
	tags := s.Tags()
	require.Len(t, tags, 3)
	assert.Equal(t, "zh-CN", tags[0].String())
	assert.Equal(t, "en", tags[1].String())
	assert.Equal(t, "zh", tags[2].String())

	_, err := Load(testFS(), Config{Basename: "i18n/messages", DefaultLocale: "zh;CN"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))

	_, err = Load(fstest.MapFS{"messages.yaml": {Data: []byte("a: [")}}, Config{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))
}

// TestMessageSource_Message 测试回退顺序与参数填充
func TestMessageSource_Message(t *testing.T) {
	s := newSource(t)
	en := language.English
	zhCN := language.MustParse("zh-CN")

	assert.Equal(t, "Hi Tom", s.Message(en, "greeting", "Tom"))
	assert.Equal(t, "你好 Tom", s.Message(zhCN, "greeting", "Tom"))
	assert.Equal(t, "User created", s.Message(en, "user.create.success"))
	assert.Equal(t, "成功", s.Message(zhCN, "response.A000200"))

	// en 缺失时先回退默认语言，再回退基础文件
	assert.Equal(t, "成功", s.Message(en, "response.A000200"))
	assert.Equal(t, "base", s.Message(en, "only.default"))
	assert.Equal(t, "中文", s.Message(zhCN, "only.zh"))
	assert.Equal(t, "中文", s.Message(language.MustParse("zh-TW"), "only.zh"))

	assert.Equal(t, "missing.key", s.Message(en, "missing.key"))
}

// TestMessageSource_Multi 测试随机多值消息
func TestMessageSource_Multi(t *testing.T) {
	s := newSource(t)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[s.Message(language.English, "lucky")] = true
	}
	assert.Equal(t, map[string]bool{"one": true, "two": true}, seen)
}

// TestMessageSource_All 测试合并全部消息
func TestMessageSource_All(t *testing.T) {
	s := newSource(t)

	all := s.All(language.English)
	assert.Equal(t, "Hi {0}", all["greeting"])
	assert.Equal(t, "成功", all["response.A000200"])
	assert.Equal(t, "base", all["only.default"])

	base := s.All(language.Und)
	assert.Equal(t, "成功", base["response.A000200"])
}

// TestContext 测试 context 传递
func TestContext(t *testing.T) {
	s := newSource(t)
	ctx := context.Background()

	assert.Equal(t, "greeting", T(ctx, "greeting"))

	ctx = WithSource(ctx, s)
	assert.Equal(t, "你好 A", T(ctx, "greeting", "A"))

	ctx = WithLocale(ctx, language.English)
	tag, ok := Locale(ctx)
	assert.True(t, ok)
	assert.Equal(t, language.English, tag)
	assert.Equal(t, "Hi A", T(ctx, "greeting", "A"))
}

// TestMessageSource_Match 测试 Accept-Language 匹配
func TestMessageSource_Match(t *testing.T) {
	s := newSource(t)
	assert.Equal(t, "en", s.Match("en-US,en;q=0.9").String())
	assert.Equal(t, "zh-CN", s.Match("fr-FR").String())
	assert.Equal(t, "zh-CN", s.Match("").String())
}
