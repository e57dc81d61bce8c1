package controller

import (
	"net/http"

	httpx "goeasy/http"
	"goeasy/http/response"
	"goeasy/i18n"
	"goeasy/logging"
)

// 国际化接口路由
const (
	RouteLocale   = "/i18n/locale/:locale"
	RouteMessages = "/i18n/messages"
)

// I18NController 切换语言与读取消息
type I18NController struct {
	source *i18n.MessageSource
	logger logging.Logger
}

// NewI18NController 创建国际化控制器
func NewI18NController(source *i18n.MessageSource) *I18NController {
	return &I18NController{source: source, logger: logging.ComponentLogger("i18n")}
}

// Register 注册路由
func (c *I18NController) Register(group httpx.IRouteGroup) {
	group.GET(RouteLocale, c.ChangeLocale)
	group.GET(RouteMessages, c.Messages)
}

// ChangeLocale 将所选语言写入 cookie
func (c *I18NController) ChangeLocale(ctx httpx.IHttpContext) error {
	tag, err := i18n.ParseLocale(ctx.GetParam("locale"))
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     i18n.CookieLocale,
		Value:    tag.String(),
		Path:     "/",
		HttpOnly: true,
	})
	c.logger.Debug(ctx.Context(), "locale changed", logging.String("locale", tag.String()))
	return response.Send(ctx, response.New(response.OK))
}

// Messages 返回当前语言下合并后的全部消息
func (c *I18NController) Messages(ctx httpx.IHttpContext) error {
	tag, ok := i18n.Locale(ctx.Context())
	if !ok {
		tag = c.source.DefaultLocale()
	}
	return response.Send(ctx, response.NewSimple(c.source.All(tag)))
}
