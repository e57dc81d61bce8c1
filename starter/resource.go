package starter

import (
	"goeasy/controller"
	"goeasy/data/orm/repo"
	"goeasy/domain/service"
	"goeasy/errors"
	"goeasy/query"
)

// Resource 为实体创建仓储、服务与控制器，并把 CRUD 路由挂到 prefix 分组下
func Resource[T any, PT service.Entity[T], REQ any, RESP any](
	s *Starter,
	prefix, table string,
	paths *query.PathRegistry[T],
	opts ...controller.Option,
) (*service.Service[T, PT], error) {
	if s.orm == nil {
		return nil, errors.NewError(errors.ErrCodeConfiguration, "database is not configured")
	}
	svc := service.New[T, PT](repo.New[T](s.orm, table, paths), s.ids)
	controller.New[T, PT, REQ, RESP](svc, opts...).Register(s.server.Group(prefix))
	return svc, nil
}
