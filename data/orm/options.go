package orm

// Condition 查询条件，Expr 使用 ? 占位符
type Condition struct {
	Expr string
	Args []any
}

// OrderBy 排序字段
type OrderBy struct {
	Column string
	Desc   bool
}

// QueryOptions 查询/更新的通用选项
type QueryOptions struct {
	Where   []Condition
	OrderBy []OrderBy
	Limit   int
	Offset  int
	Select  []string
}

// QueryOption 配置 QueryOptions
type QueryOption func(*QueryOptions)

// WithWhere 追加查询条件，空表达式忽略
func WithWhere(expr string, args ...any) QueryOption {
	return func(opts *QueryOptions) {
		if expr == "" {
			return
		}
		opts.Where = append(opts.Where, Condition{Expr: expr, Args: args})
	}
}

// WithOrderBy 追加排序字段
func WithOrderBy(column string, desc bool) QueryOption {
	return func(opts *QueryOptions) {
		if column == "" {
			return
		}
		opts.OrderBy = append(opts.OrderBy, OrderBy{Column: column, Desc: desc})
	}
}

func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) { opts.Limit = limit }
}

func WithOffset(offset int) QueryOption {
	return func(opts *QueryOptions) { opts.Offset = offset }
}

// WithSelect 指定查询列
func WithSelect(columns ...string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Select = append(opts.Select, columns...)
	}
}

// CollectQueryOptions 合并选项，nil 选项跳过
func CollectQueryOptions(opts ...QueryOption) QueryOptions {
	var qo QueryOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&qo)
		}
	}
	return qo
}
