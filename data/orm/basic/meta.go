package basic

import (
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	dbcore "goeasy/data/db"
	"goeasy/errors"
)

var timeType = reflect.TypeOf(time.Time{})

type fieldInfo struct {
	column string
	index  []int
	auto   bool
}

type structMeta struct {
	typ      reflect.Type
	fields   []fieldInfo
	byColumn map[string]fieldInfo
}

// columns 按声明顺序返回满足条件的列
func (sm *structMeta) columns(keep func(fieldInfo) bool) []string {
	cols := make([]string, 0, len(sm.fields))
	for _, f := range sm.fields {
		if keep(f) {
			cols = append(cols, f.column)
		}
	}
	return cols
}

func (sm *structMeta) values(v reflect.Value, cols []string) []any {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = v.FieldByIndex(sm.byColumn[c].index).Interface()
	}
	return vals
}

type metaCache struct {
	mu    sync.RWMutex
	metas map[reflect.Type]*structMeta
}

func newMetaCache() *metaCache {
	return &metaCache{metas: make(map[reflect.Type]*structMeta)}
}

// of 返回实体类型的元信息，按类型缓存
func (c *metaCache) of(entity any) (*structMeta, error) {
	t := reflect.TypeOf(entity)
	for t != nil && (t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Newf(errors.ErrCodeUnsupportedType, "unsupported entity type %T", entity)
	}

	c.mu.RLock()
	sm, ok := c.metas[t]
	c.mu.RUnlock()
	if ok {
		return sm, nil
	}

	sm = buildStructMeta(t)
	c.mu.Lock()
	c.metas[t] = sm
	c.mu.Unlock()
	return sm, nil
}

// buildStructMeta 展开内嵌结构体，只收集标量字段与 time.Time；
// 外层同名列覆盖内层。
func buildStructMeta(t reflect.Type) *structMeta {
	sm := &structMeta{typ: t, byColumn: make(map[string]fieldInfo)}

	var walk func(reflect.Type, []int)
	walk = func(cur reflect.Type, prefix []int) {
		for i := 0; i < cur.NumField(); i++ {
			f := cur.Field(i)
			if !f.IsExported() {
				continue
			}
			index := append(append([]int(nil), prefix...), i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Type != timeType {
				walk(f.Type, index)
				continue
			}
			if !isScalar(f.Type) {
				continue
			}

			column, auto, skip := parseTag(f)
			if skip {
				continue
			}
			info := fieldInfo{column: column, index: index, auto: auto}
			if _, dup := sm.byColumn[column]; dup {
				for j := range sm.fields {
					if sm.fields[j].column == column {
						sm.fields[j] = info
					}
				}
			} else {
				sm.fields = append(sm.fields, info)
			}
			sm.byColumn[column] = info
		}
	}
	walk(t, nil)
	return sm
}

// parseTag 解析 `db:"column,auto"`，`db:"-"` 表示忽略
func parseTag(f reflect.StructField) (column string, auto, skip bool) {
	tag := f.Tag.Get("db")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	column = strings.TrimSpace(parts[0])
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "auto" {
			auto = true
		}
	}
	if column == "" {
		column = toSnakeCase(f.Name)
	}
	return column, auto, false
}

func isScalar(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// toSnakeCase CreateTime -> create_time，UserID -> user_id
func toSnakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// scan 将结果扫描到 *T 或 *[]T / *[]*T；*T 时调用方已执行 Next
func (o *Orm) scan(rows dbcore.IRows, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.NewError(errors.ErrCodeInvalidInput, "scan destination must be a non-nil pointer")
	}
	sm, err := o.metas.of(dest)
	if err != nil {
		return err
	}
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	elem := rv.Elem()
	switch elem.Kind() {
	case reflect.Struct:
		return scanRow(rows, sm, cols, elem)
	case reflect.Slice:
		itemType := elem.Type().Elem()
		isPtr := itemType.Kind() == reflect.Ptr
		if isPtr {
			itemType = itemType.Elem()
		}
		for rows.Next() {
			item := reflect.New(itemType)
			if err := scanRow(rows, sm, cols, item.Elem()); err != nil {
				return err
			}
			if isPtr {
				elem.Set(reflect.Append(elem, item))
			} else {
				elem.Set(reflect.Append(elem, item.Elem()))
			}
		}
		return rows.Err()
	default:
		return errors.Newf(errors.ErrCodeUnsupportedType, "unsupported scan destination %T", dest)
	}
}

func scanRow(rows dbcore.IRows, sm *structMeta, cols []string, v reflect.Value) error {
	ptrs := make([]any, len(cols))
	for i, col := range cols {
		if fi, ok := sm.byColumn[col]; ok {
			ptrs[i] = v.FieldByIndex(fi.index).Addr().Interface()
			continue
		}
		var discard any
		ptrs[i] = &discard
	}
	return rows.Scan(ptrs...)
}
