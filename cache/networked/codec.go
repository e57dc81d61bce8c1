package networked

import (
	"bytes"
	"encoding/json"

	"goeasy/errors"
)

// encode 将值序列化为 JSON；nil 编码为空负载。
// 整数编码后即为十进制文本，可直接被 INCRBY 使用。
func encode(value any) ([]byte, error) {
	if value == nil {
		return []byte{}, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeSerialization, "cannot serialize cache value")
	}
	return b, nil
}

// decode 反序列化；空负载表示“无值”。数字优先解码为 int64。
func decode(b []byte) (any, bool, error) {
	if len(b) == 0 {
		return nil, false, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false, errors.WrapError(err, errors.ErrCodeSerialization, "cannot deserialize cache value")
	}
	return normalize(v), true, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}
