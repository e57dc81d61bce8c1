// Package snowflake 提供实体主键生成器（雪花算法）
package snowflake

import (
	"sync"
	"time"

	"goeasy/errors"
)

const (
	// 起始时间戳 (2023-01-01 00:00:00 UTC)
	epoch int64 = 1672531200000

	workerIDBits     = 5
	datacenterIDBits = 5
	sequenceBits     = 12

	maxWorkerID     = -1 ^ (-1 << workerIDBits)     // 31
	maxDatacenterID = -1 ^ (-1 << datacenterIDBits) // 31
	maxSequence     = -1 ^ (-1 << sequenceBits)     // 4095

	workerIDShift      = sequenceBits
	datacenterIDShift  = sequenceBits + workerIDBits
	timestampLeftShift = sequenceBits + workerIDBits + datacenterIDBits
)

// IGenerator 主键生成接口
type IGenerator interface {
	NextID() (int64, error)
}

// Config 生成器配置
type Config struct {
	DatacenterID int64 `json:"datacenter_id" yaml:"datacenter_id" mapstructure:"datacenter-id"`
	WorkerID     int64 `json:"worker_id" yaml:"worker_id" mapstructure:"worker-id"`
}

// DefaultConfig 默认 datacenterID=1, workerID=1
func DefaultConfig() Config {
	return Config{DatacenterID: 1, WorkerID: 1}
}

// Generator Snowflake ID生成器
type Generator struct {
	mux           sync.Mutex
	datacenterID  int64
	workerID      int64
	sequence      int64
	lastTimestamp int64
	now           func() time.Time
}

// Option 生成器选项
type Option func(*Generator)

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// New 创建ID生成器
func New(cfg Config, opts ...Option) (*Generator, error) {
	if cfg.DatacenterID < 0 || cfg.DatacenterID > maxDatacenterID {
		return nil, errors.Newf(errors.ErrCodeConfiguration, "datacenter id %d out of range [0, %d]", cfg.DatacenterID, maxDatacenterID)
	}
	if cfg.WorkerID < 0 || cfg.WorkerID > maxWorkerID {
		return nil, errors.Newf(errors.ErrCodeConfiguration, "worker id %d out of range [0, %d]", cfg.WorkerID, maxWorkerID)
	}

	g := &Generator{
		datacenterID:  cfg.DatacenterID,
		workerID:      cfg.WorkerID,
		lastTimestamp: -1,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) millis() int64 { return g.now().UnixMilli() }

// NextID 生成下一个ID，时钟回拨时返回错误
func (g *Generator) NextID() (int64, error) {
	g.mux.Lock()
	defer g.mux.Unlock()

	now := g.millis()
	if now < g.lastTimestamp {
		return 0, errors.Newf(errors.ErrCodeInternal, "clock moved backwards by %dms, refusing to generate id", g.lastTimestamp-now)
	}

	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// 序列号用完，等待下一毫秒
			for now <= g.lastTimestamp {
				now = g.millis()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTimestamp = now

	return ((now - epoch) << timestampLeftShift) |
		(g.datacenterID << datacenterIDShift) |
		(g.workerID << workerIDShift) |
		g.sequence, nil
}

// Parts ID 各组成部分
type Parts struct {
	Time         time.Time
	DatacenterID int64
	WorkerID     int64
	Sequence     int64
}

// Parse 解析ID
func Parse(id int64) Parts {
	return Parts{
		Time:         time.UnixMilli((id >> timestampLeftShift) + epoch),
		DatacenterID: (id >> datacenterIDShift) & maxDatacenterID,
		WorkerID:     (id >> workerIDShift) & maxWorkerID,
		Sequence:     id & maxSequence,
	}
}
