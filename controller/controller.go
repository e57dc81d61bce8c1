// Package controller 提供通用 CRUD 控制器与国际化接口
package controller

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"goeasy/beans"
	"goeasy/domain/service"
	"goeasy/errors"
	httpx "goeasy/http"
	"goeasy/http/response"
	"goeasy/i18n"
	"goeasy/query"
)

// 相对于控制器分组的路由
const (
	RouteFindOne  = "/find/:id"
	RouteFindList = "/find/list"
	RouteFindPage = "/find/page"
	RouteCreate   = "/create"
	RouteUpdate   = "/update/:id"
	RouteDelete   = "/delete/:id"
)

// Controller 通用 CRUD 控制器
//
// REQ 为请求体，按字段名复制到实体；RESP 一般内嵌 response.DataResponse，
// 由实体按字段名构建。列表与分页中的条目不带响应头。
type Controller[T any, PT service.Entity[T], REQ any, RESP any] struct {
	service  *service.Service[T, PT]
	registry *query.PathRegistry[T]
	prefix   string
}

// Option 控制器选项
type Option func(*options)

type options struct {
	prefix string
}

// WithMessagePrefix 设置成功消息的 key 前缀，默认为实体类型名的短横线形式
func WithMessagePrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// New 创建控制器，可过滤属性取自服务仓储的属性表
func New[T any, PT service.Entity[T], REQ any, RESP any](svc *service.Service[T, PT], opts ...Option) *Controller[T, PT, REQ, RESP] {
	o := &options{prefix: kebab(reflect.TypeOf((*T)(nil)).Elem().Name())}
	for _, opt := range opts {
		opt(o)
	}
	return &Controller[T, PT, REQ, RESP]{
		service:  svc,
		registry: svc.Repo().Registry(),
		prefix:   o.prefix,
	}
}

// MessagePrefix 返回成功消息的 key 前缀
func (c *Controller[T, PT, REQ, RESP]) MessagePrefix() string { return c.prefix }

// Register 将 CRUD 路由注册到分组
func (c *Controller[T, PT, REQ, RESP]) Register(group httpx.IRouteGroup) {
	group.GET(RouteFindList, c.FindList)
	group.GET(RouteFindPage, c.FindPage)
	group.GET(RouteFindOne, c.FindOne)
	group.POST(RouteCreate, c.Create)
	group.PUT(RouteUpdate, c.Update)
	group.DELETE(RouteDelete, c.Delete)
}

func (c *Controller[T, PT, REQ, RESP]) FindOne(ctx httpx.IHttpContext) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	e, err := c.service.FindByID(ctx.Context(), id)
	if err != nil {
		return err
	}
	resp, err := c.ToResponse(ctx, e, false, "")
	if err != nil {
		return err
	}
	return send(ctx, resp)
}

func (c *Controller[T, PT, REQ, RESP]) FindList(ctx httpx.IHttpContext) error {
	req := query.ParseValues(ctx.GetQueryParams())
	pred, sort, err := query.Translate(req, c.registry)
	if err != nil {
		return err
	}
	items, err := c.service.FindAll(ctx.Context(), pred, sort)
	if err != nil {
		return err
	}
	content, err := c.internal(ctx, items)
	if err != nil {
		return err
	}
	return response.Send(ctx, response.NewList(content))
}

func (c *Controller[T, PT, REQ, RESP]) FindPage(ctx httpx.IHttpContext) error {
	req, err := query.ParsePageValues(ctx.GetQueryParams())
	if err != nil {
		return err
	}
	pred, err := query.TranslateCriteria(req.Criteria, c.registry)
	if err != nil {
		return err
	}
	page, err := c.service.FindPage(ctx.Context(), pred, req.Pageable())
	if err != nil {
		return err
	}
	content, err := c.internal(ctx, page.Content)
	if err != nil {
		return err
	}
	return response.Send(ctx, response.NewPage(content, page.Number, page.Size, page.TotalElements))
}

func (c *Controller[T, PT, REQ, RESP]) Create(ctx httpx.IHttpContext) error {
	e, err := c.bind(ctx)
	if err != nil {
		return err
	}
	if e, err = c.service.Save(ctx.Context(), e); err != nil {
		return err
	}
	resp, err := c.ToResponse(ctx, e, false, c.prefix+".create.success")
	if err != nil {
		return err
	}
	return send(ctx, resp)
}

func (c *Controller[T, PT, REQ, RESP]) Update(ctx httpx.IHttpContext) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	e, err := c.bind(ctx)
	if err != nil {
		return err
	}
	if e, err = c.service.Update(ctx.Context(), id, e); err != nil {
		return err
	}
	resp, err := c.ToResponse(ctx, e, false, c.prefix+".update.success")
	if err != nil {
		return err
	}
	return send(ctx, resp)
}

// Delete 逻辑删除
func (c *Controller[T, PT, REQ, RESP]) Delete(ctx httpx.IHttpContext) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.LogicalDeleteByID(ctx.Context(), id); err != nil {
		return err
	}
	key := c.prefix + ".delete.success"
	return response.Send(ctx, response.NewWithMessage(response.OK, i18n.T(ctx.Context(), key)))
}

// ToResponse 由实体构建响应，messageKey 非空时作为响应头消息
func (c *Controller[T, PT, REQ, RESP]) ToResponse(ctx httpx.IHttpContext, e *T, internal bool, messageKey string) (*RESP, error) {
	resp, err := response.Build[RESP](e, internal)
	if err != nil {
		return nil, err
	}
	if messageKey != "" {
		if env, ok := any(resp).(response.IEnvelope); ok && env.GetHeader() != nil {
			env.GetHeader().Message = i18n.T(ctx.Context(), messageKey)
		}
	}
	return resp, nil
}

// FromRequest 将请求复制为实体，nil 字段跳过，字符串去掉首尾空白
func (c *Controller[T, PT, REQ, RESP]) FromRequest(req *REQ) (*T, error) {
	e := new(T)
	if err := beans.Copy(e, req, beans.SkipNil(), beans.TrimStrings()); err != nil {
		return nil, err
	}
	return e, nil
}

func (c *Controller[T, PT, REQ, RESP]) bind(ctx httpx.IHttpContext) (*T, error) {
	req := new(REQ)
	if err := ctx.BindJSON(req); err != nil {
		return nil, err
	}
	return c.FromRequest(req)
}

func (c *Controller[T, PT, REQ, RESP]) internal(ctx httpx.IHttpContext, items []T) ([]*RESP, error) {
	out := make([]*RESP, 0, len(items))
	for i := range items {
		resp, err := c.ToResponse(ctx, &items[i], true, "")
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func pathID(ctx httpx.IHttpContext) (int64, error) {
	raw := ctx.GetParam("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeInvalidInput, "invalid id %q", raw)
	}
	return id, nil
}

func send(ctx httpx.IHttpContext, body any) error {
	if env, ok := body.(response.IEnvelope); ok {
		return response.Send(ctx, env)
	}
	return ctx.JSON(200, body)
}

// kebab 将 UserRole 转换为 user-role
func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
