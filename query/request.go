package query

import "strings"

const (
	// DefaultPageSize 未指定分页大小时的默认值
	DefaultPageSize = 20
	// MaxPageSize 分页大小上限，超出时截断
	MaxPageSize = 1000
	// MaxOffset 偏移量上限，页号超出时截断到该偏移所在页
	MaxOffset = 1 << 30
)

// Criterion 单个过滤条件，值总是以字符串传递，翻译时再按属性类型转换
type Criterion struct {
	Property  string    `json:"property"`
	Operation Operation `json:"operation"`
	Value     string    `json:"value"`
}

// QueryRequest 查询请求：所有条件以 AND 组合
type QueryRequest struct {
	Criteria []Criterion `json:"criteria"`
	// Order 形如 "name,age:desc"
	Order string `json:"order"`
}

// Where 追加条件
func (r *QueryRequest) Where(property string, op Operation, value string) *QueryRequest {
	r.Criteria = append(r.Criteria, Criterion{Property: property, Operation: op, Value: value})
	return r
}

// Sort 解析排序
func (r *QueryRequest) Sort() Sort {
	return ParseSort(r.Order)
}

// PageQueryRequest 分页查询请求，页号从 0 开始
type PageQueryRequest struct {
	QueryRequest
	Page int `json:"page"`
	Size int `json:"size"`
}

// Pageable 归一化分页参数：负页号视为 0，非正的大小使用默认值，
// 大小不超过 MaxPageSize，偏移量不超过 MaxOffset
func (r *PageQueryRequest) Pageable() Pageable {
	return NewPageable(r.Page, r.Size, r.Sort())
}

// NewPageable 按 PageQueryRequest.Pageable 的规则归一化
func NewPageable(page, size int, sort Sort) Pageable {
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)
	page = max(page, 0)
	page = min(page, MaxOffset/size)
	return Pageable{Page: page, Size: size, Sort: sort}
}

// Order 单个排序键
type Order struct {
	Property string `json:"property"`
	Desc     bool   `json:"desc"`
}

// Sort 排序规格
type Sort struct {
	Orders []Order `json:"orders"`
}

// ByID 按标识升序
func ByID() Sort {
	return Sort{Orders: []Order{{Property: "id"}}}
}

// ParseSort 解析排序串。逗号分隔多个键，每个键为 field 或 field:direction；
// direction 忽略大小写等于 desc 时降序，其余一律升序。空串按 id 升序。
func ParseSort(order string) Sort {
	var s Sort
	for _, token := range strings.Split(order, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		property, direction, _ := strings.Cut(token, ":")
		property = strings.TrimSpace(property)
		if property == "" {
			continue
		}
		s.Orders = append(s.Orders, Order{
			Property: property,
			Desc:     strings.EqualFold(strings.TrimSpace(direction), "desc"),
		})
	}
	if len(s.Orders) == 0 {
		return ByID()
	}
	return s
}

// String 渲染为 "name ASC, age DESC"
func (s Sort) String() string {
	parts := make([]string, len(s.Orders))
	for i, o := range s.Orders {
		if o.Desc {
			parts[i] = o.Property + " DESC"
		} else {
			parts[i] = o.Property + " ASC"
		}
	}
	return strings.Join(parts, ", ")
}

// Pageable 分页参数
type Pageable struct {
	Page int
	Size int
	Sort Sort
}

// Offset 偏移量，未经 NewPageable 归一化的参数同样不会溢出
func (p Pageable) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > MaxOffset/p.Size {
		return MaxOffset
	}
	return p.Page * p.Size
}
