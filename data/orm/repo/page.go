package repo

import "goeasy/query"

// Page 分页结果，页号从 0 开始
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage 根据总数计算页数
func NewPage[T any](content []T, pageable query.Pageable, total int64) *Page[T] {
	size := pageable.Size
	if size <= 0 {
		size = query.DefaultPageSize
	}
	return &Page[T]{
		Content:       content,
		Number:        pageable.Page,
		Size:          size,
		TotalElements: total,
		TotalPages:    int((total + int64(size) - 1) / int64(size)),
	}
}

func (p *Page[T]) NumberOfElements() int { return len(p.Content) }
func (p *Page[T]) IsFirst() bool         { return p.Number == 0 }
func (p *Page[T]) IsLast() bool          { return p.Number+1 >= p.TotalPages }
func (p *Page[T]) IsEmpty() bool         { return len(p.Content) == 0 }

// Map 转换页内容，分页信息保持不变
func Map[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	out := make([]R, len(p.Content))
	for i, item := range p.Content {
		out[i] = fn(item)
	}
	return &Page[R]{
		Content:       out,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
