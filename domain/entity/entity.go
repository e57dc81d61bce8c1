// Package entity 定义持久化实体的基础字段与接口
//
// 设计原则：
// 1. 实体通过内嵌 Model 获得主键、审计与逻辑删除字段
// 2. 审计字段由 service 层根据上下文中的用户填充，业务代码不直接赋值
// 3. 逻辑删除的记录对仓储读操作不可见
package entity

import "time"

const (
	// BoolTrue / BoolFalse 逻辑删除标记的取值
	BoolTrue  = "1"
	BoolFalse = "0"

	// Anonymous 上下文中没有用户时的审计人
	Anonymous int64 = 0
)

// AuditorFields Model 的字段名，更新时不从请求实体复制
var AuditorFields = []string{
	"ID", "Creator", "CreateTime", "Updater", "UpdateTime", "IsDeleted", "Deleter", "DeleteTime",
}

// IObject 带 int64 主键的对象
type IObject interface {
	GetID() int64
}

// IEntity 内嵌 Model 的实体
type IEntity interface {
	IObject
	SetID(id int64)
	// Audit 返回内嵌的 Model，供基础设施层填充审计字段
	Audit() *Model
}

// ISoftDeletable 支持逻辑删除的实体
type ISoftDeletable interface {
	Deleted() bool
}

// IValidatable 实体自身的校验，在标签校验之后调用
type IValidatable interface {
	Validate() error
}

// Model 通用实体字段（用于嵌入）
type Model struct {
	ID         int64      `json:"id" db:"id"`
	Creator    int64      `json:"creator" db:"creator"`
	CreateTime time.Time  `json:"createTime" db:"create_time"`
	Updater    int64      `json:"updater" db:"updater"`
	UpdateTime time.Time  `json:"updateTime" db:"update_time"`
	IsDeleted  string     `json:"isDeleted" db:"is_deleted"`
	Deleter    *int64     `json:"deleter,omitempty" db:"deleter"`
	DeleteTime *time.Time `json:"deleteTime,omitempty" db:"delete_time"`
}

func (m *Model) GetID() int64   { return m.ID }
func (m *Model) SetID(id int64) { m.ID = id }
func (m *Model) Audit() *Model  { return m }
func (m *Model) Deleted() bool  { return m.IsDeleted == BoolTrue }

// IsNew 尚未保存过的实体没有创建时间
func (m *Model) IsNew() bool { return m.CreateTime.IsZero() }

// MarkCreated 设置创建与更新信息，并将删除标记置为未删除
func (m *Model) MarkCreated(by int64, at time.Time) {
	m.Creator, m.CreateTime = by, at
	m.Updater, m.UpdateTime = by, at
	m.IsDeleted = BoolFalse
}

// MarkUpdated 设置更新信息
func (m *Model) MarkUpdated(by int64, at time.Time) {
	m.Updater, m.UpdateTime = by, at
}

// MarkDeleted 设置逻辑删除信息
func (m *Model) MarkDeleted(by int64, at time.Time) {
	m.IsDeleted = BoolTrue
	m.Deleter, m.DeleteTime = &by, &at
}
