// Package service 提供基于 repo.Repo 的通用实体服务。
//
// 服务负责主键生成、审计字段填充与写前校验，读操作直接委托仓储。
package service

import (
	"context"
	"time"

	"goeasy/auth"
	"goeasy/beans"
	"goeasy/codegen/snowflake"
	"goeasy/data/orm/repo"
	"goeasy/domain/entity"
	"goeasy/errors"
	"goeasy/logging"
	"goeasy/query"
	"goeasy/validation"
)

// DefaultBatchSize 批量保存时每个事务写入的记录数
const DefaultBatchSize = 2000

// Entity 约束 *T 实现 entity.IEntity
type Entity[T any] interface {
	*T
	entity.IEntity
}

// Service 通用实体服务
type Service[T any, PT Entity[T]] struct {
	repo      *repo.Repo[T]
	ids       snowflake.IGenerator
	validator validation.IValidator
	batchSize int
	now       func() time.Time
	logger    logging.Logger
}

// Option 服务选项
type Option func(*options)

type options struct {
	validator validation.IValidator
	batchSize int
	now       func() time.Time
}

// WithValidator 替换默认的结构体校验器
func WithValidator(v validation.IValidator) Option {
	return func(o *options) { o.validator = v }
}

// WithBatchSize 设置批量保存的分块大小
func WithBatchSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.batchSize = size
		}
	}
}

// WithClock 设置审计时间来源
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New 创建服务
func New[T any, PT Entity[T]](r *repo.Repo[T], ids snowflake.IGenerator, opts ...Option) *Service[T, PT] {
	o := &options{batchSize: DefaultBatchSize, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.validator == nil {
		o.validator = validation.New()
	}
	return &Service[T, PT]{
		repo:      r,
		ids:       ids,
		validator: o.validator,
		batchSize: o.batchSize,
		now:       o.now,
		logger:    logging.ComponentLogger("service"),
	}
}

// Repo 返回底层仓储
func (s *Service[T, PT]) Repo() *repo.Repo[T] { return s.repo }

func (s *Service[T, PT]) FindByID(ctx context.Context, id int64) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service[T, PT]) FindAll(ctx context.Context, pred query.Predicate[T], sort query.Sort) ([]T, error) {
	return s.repo.FindAll(ctx, pred, sort)
}

func (s *Service[T, PT]) FindPage(ctx context.Context, pred query.Predicate[T], pageable query.Pageable) (*repo.Page[T], error) {
	return s.repo.FindPage(ctx, pred, pageable)
}

func (s *Service[T, PT]) Count(ctx context.Context, pred query.Predicate[T]) (int64, error) {
	return s.repo.Count(ctx, pred)
}

// Exists 主键对应的记录是否存在
func (s *Service[T, PT]) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if errors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Save 保存实体
//
// 未保存过的实体分配主键并填充创建信息后插入，否则填充更新信息后按主键覆盖。
func (s *Service[T, PT]) Save(ctx context.Context, e *T) (*T, error) {
	if e == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "entity is nil")
	}
	if PT(e).Audit().IsNew() {
		if err := s.prepareCreate(ctx, e); err != nil {
			return nil, err
		}
		if err := s.repo.Insert(ctx, e); err != nil {
			return nil, err
		}
		return e, nil
	}

	PT(e).Audit().MarkUpdated(auth.UserID(ctx), s.now())
	if err := s.validator.Validate(e); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, PT(e).GetID(), e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service[T, PT]) prepareCreate(ctx context.Context, e *T) error {
	pe := PT(e)
	if pe.GetID() == 0 {
		id, err := s.ids.NextID()
		if err != nil {
			return err
		}
		pe.SetID(id)
	}
	pe.Audit().MarkCreated(auth.UserID(ctx), s.now())
	return s.validator.Validate(e)
}

// SaveInBatch 分块插入新实体，每块一个事务
//
// 某块失败时该块回滚，已提交的块保留，返回已保存的实体与错误。
func (s *Service[T, PT]) SaveInBatch(ctx context.Context, entities []*T) ([]*T, error) {
	s.logger.Info(ctx, "start data saving", logging.Int("count", len(entities)))
	saved := make([]*T, 0, len(entities))
	for start := 0; start < len(entities); start += s.batchSize {
		end := min(start+s.batchSize, len(entities))
		chunk := entities[start:end]
		for _, e := range chunk {
			if err := s.prepareCreate(ctx, e); err != nil {
				return saved, err
			}
		}
		if err := s.insertChunk(ctx, chunk); err != nil {
			return saved, err
		}
		saved = append(saved, chunk...)
		s.logger.Debug(ctx, "saved batch", logging.Int("size", len(chunk)))
	}
	s.logger.Info(ctx, "complete data saving", logging.Int("saved", len(saved)))
	return saved, nil
}

func (s *Service[T, PT]) insertChunk(ctx context.Context, chunk []*T) error {
	sess, err := s.repo.Orm().Begin(ctx)
	if err != nil {
		return errors.WrapDbError(ctx, err, "begin batch")
	}
	if err := s.repo.WithTx(sess).Insert(ctx, chunk...); err != nil {
		if rbErr := sess.Rollback(); rbErr != nil {
			s.logger.Warn(ctx, "rollback batch failed", logging.Error(rbErr))
		}
		return err
	}
	if err := sess.Commit(); err != nil {
		return errors.WrapDbError(ctx, err, "commit batch")
	}
	return nil
}

// Update 将 e 的字段复制到已保存的记录后写回
//
// 审计字段与 excludeFields 不复制，e 中的零值与 nil 会覆盖原值。
// 记录不存在时返回 NOT_FOUND。
func (s *Service[T, PT]) Update(ctx context.Context, id int64, e *T, excludeFields ...string) (*T, error) {
	if e == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "entity is nil")
	}
	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exclude := append(append([]string(nil), excludeFields...), entity.AuditorFields...)
	if err := beans.Copy(stored, e, beans.Exclude(exclude...)); err != nil {
		return nil, err
	}
	return s.Save(ctx, stored)
}

// LogicalDeleteByID 逻辑删除，删除人取上下文中的用户；记录不存在时忽略
func (s *Service[T, PT]) LogicalDeleteByID(ctx context.Context, id int64) error {
	ok, err := s.repo.LogicalDelete(ctx, id, auth.UserID(ctx), s.now())
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug(ctx, "logical delete skipped", logging.Int64("id", id))
	}
	return nil
}

// DeleteByID 物理删除；记录不存在时忽略
func (s *Service[T, PT]) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.repo.DeleteByID(ctx, id)
	return err
}
