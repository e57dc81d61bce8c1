package auth

import (
	httpx "goeasy/http"
	"goeasy/http/response"
	"goeasy/logging"
)

// Middleware 授权中间件，通过后将用户编号放入 context，失败返回 FORBIDDEN 响应
func Middleware(a *Authorizer) httpx.Middleware {
	return func(c httpx.IHttpContext, next func() error) error {
		if route, ok := c.Get(httpx.RouteKey); ok {
			if key, _ := route.(string); a.routeIgnored(key) {
				return next()
			}
		}

		ctx := c.Context()
		switch id := a.Check(c.GetRequest()); {
		case id > 0:
			ctx = WithUserID(ctx, id)
			c.SetContext(logging.WithContextFields(ctx, logging.Int64("user_id", id)))
			return next()
		case id == Ignored:
			a.logger.Debug(ctx, "request needn't check access token", logging.String("path", c.GetPath()))
			return next()
		case id == Expired:
			a.logger.Warn(ctx, "access token expired", logging.String("path", c.GetPath()))
		case id == Invalid:
			a.logger.Warn(ctx, "access token invalidated", logging.String("path", c.GetPath()))
		default:
			a.logger.Warn(ctx, "unknown authorize result", logging.Int64("result", id))
		}
		return response.NewCodeError(response.Forbidden)
	}
}
