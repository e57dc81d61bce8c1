package orm

// ModelMeta 模型元信息
//
// Table 为空时由适配器从 Model 的 TableName() 推断。
// Omit 中的列在 Save 时不会被写入（例如创建人、创建时间）。
type ModelMeta struct {
	Model      any
	Table      string
	PrimaryKey string
	Omit       []string
}

// PK 返回主键列名，默认 id
func (m *ModelMeta) PK() string {
	if m == nil || m.PrimaryKey == "" {
		return "id"
	}
	return m.PrimaryKey
}

// Omitted 判断列是否在 Save 时忽略
func (m *ModelMeta) Omitted(column string) bool {
	if m == nil {
		return false
	}
	for _, c := range m.Omit {
		if c == column {
			return true
		}
	}
	return false
}
