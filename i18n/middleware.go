package i18n

import (
	httpx "goeasy/http"
)

// CookieLocale 保存用户所选语言的 cookie 名
const CookieLocale = "locale"

// Middleware 解析请求语言并将语言与消息源放入 context
//
// 优先使用 locale cookie，其次 Accept-Language，最后默认语言。
func Middleware(source *MessageSource) httpx.Middleware {
	return func(c httpx.IHttpContext, next func() error) error {
		tag := source.DefaultLocale()
		if v := c.GetCookie(CookieLocale); v != "" {
			if parsed, err := ParseLocale(v); err == nil {
				tag = parsed
			}
		} else if accept := c.GetHeader("Accept-Language"); accept != "" {
			tag = source.Match(accept)
		}

		ctx := WithSource(WithLocale(c.Context(), tag), source)
		c.SetContext(ctx)
		return next()
	}
}
