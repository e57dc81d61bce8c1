package i18n

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"goeasy/errors"
)

type (
	localeContextKey struct{}
	sourceContextKey struct{}
)

// WithLocale 在 context 中设置当前语言
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeContextKey{}, tag)
}

// Locale 返回 context 中的语言，未设置时 ok 为 false
func Locale(ctx context.Context) (language.Tag, bool) {
	if ctx == nil {
		return language.Und, false
	}
	tag, ok := ctx.Value(localeContextKey{}).(language.Tag)
	return tag, ok
}

// WithSource 在 context 中设置消息源
func WithSource(ctx context.Context, source *MessageSource) context.Context {
	return context.WithValue(ctx, sourceContextKey{}, source)
}

// FromContext 返回 context 中的消息源
func FromContext(ctx context.Context) *MessageSource {
	if ctx == nil {
		return nil
	}
	source, _ := ctx.Value(sourceContextKey{}).(*MessageSource)
	return source
}

// T 使用 context 中的消息源与语言翻译 key，无消息源时原样返回 key
func T(ctx context.Context, key string, args ...any) string {
	source := FromContext(ctx)
	if source == nil {
		return key
	}
	return source.Get(ctx, key, args...)
}

// ParseLocale 解析语言字符串
//
// 支持 BCP47 形式（zh-CN）与 lang_COUNTRY[_variant] 形式，后者也可用空格分隔。
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.Und, errors.NewError(errors.ErrCodeInvalidInput, "empty locale string")
	}
	if err := validateLocale(s); err != nil {
		return language.Und, err
	}

	if !strings.ContainsAny(s, "_ ") {
		if tag, err := language.Parse(s); err == nil {
			return tag, nil
		}
	}

	delimiter := "_"
	if !strings.Contains(s, "_") && strings.Contains(s, " ") {
		delimiter = " "
	}
	tokens := strings.Split(s, delimiter)
	parts := make([]string, 0, 3)
	for i, token := range tokens {
		if i >= 2 {
			// 变体保留为剩余部分整体
			parts = append(parts, strings.Join(tokens[2:], "-"))
			break
		}
		if token == "" {
			return language.Und, errors.Newf(errors.ErrCodeInvalidInput, "invalid locale string: %s", s)
		}
		parts = append(parts, token)
	}

	tag, err := language.Parse(strings.Join(parts, "-"))
	if err != nil && len(parts) > 2 {
		// 变体不符合 BCP47 时只保留语言与地区
		tag, err = language.Parse(strings.Join(parts[:2], "-"))
	}
	if err != nil {
		return language.Und, errors.WrapError(err, errors.ErrCodeInvalidInput, "invalid locale string: "+s)
	}
	return tag, nil
}

func validateLocale(s string) error {
	for _, ch := range s {
		if ch == ' ' || ch == '_' || ch == '-' || ch == '#' || unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			continue
		}
		return errors.Newf(errors.ErrCodeInvalidInput, "invalid locale string: %s", s)
	}
	return nil
}
