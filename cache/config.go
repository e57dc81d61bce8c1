package cache

import (
	"strings"
	"time"

	"goeasy/errors"
)

// Type 缓存后端类型
type Type string

const (
	// TypeEmbedded 进程内缓存
	TypeEmbedded Type = "embedded"
	// TypeNetworked 远程 redis 缓存
	TypeNetworked Type = "networked"
)

// ParseType 解析后端类型，兼容常见别名
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "embedded", "ehcache", "local", "memory":
		return TypeEmbedded, nil
	case "networked", "redis", "remote":
		return TypeNetworked, nil
	default:
		return "", errors.Newf(errors.ErrCodeConfiguration, "unknown cache type %q", s)
	}
}

// Config 缓存配置
type Config struct {
	// Type 后端类型
	Type Type `json:"type" yaml:"type"`

	// Prefix 统一附加到所有键前的命名空间
	Prefix string `json:"prefix" yaml:"prefix"`

	// TimeToLive 调用方未指定 TTL 时使用的默认值
	TimeToLive time.Duration `json:"time_to_live" yaml:"time_to_live"`

	// 远程后端连接参数
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Password string `json:"password" yaml:"password"`
	Database int    `json:"database" yaml:"database"`

	// Capacity 进程内后端每个 TTL 分区的容量
	Capacity int `json:"capacity" yaml:"capacity"`
}

// DefaultConfig 默认配置：进程内缓存、前缀 easy_、TTL 4 小时
func DefaultConfig() Config {
	return Config{
		Type:       TypeEmbedded,
		Prefix:     "easy_",
		TimeToLive: 4 * time.Hour,
		Host:       "127.0.0.1",
		Port:       6379,
		Capacity:   10000,
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	if _, err := ParseType(string(c.Type)); err != nil {
		return err
	}
	if c.TimeToLive < 0 {
		return errors.NewError(errors.ErrCodeConfiguration, "cache time-to-live must not be negative")
	}
	if t, _ := ParseType(string(c.Type)); t == TypeNetworked {
		if c.Host == "" {
			return errors.NewError(errors.ErrCodeConfiguration, "cache host is required for networked backend")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return errors.Newf(errors.ErrCodeConfiguration, "invalid cache port %d", c.Port)
		}
		if c.TimeToLive <= 0 {
			return errors.NewError(errors.ErrCodeConfiguration, "networked cache requires a positive default time-to-live")
		}
		if c.Database < 0 {
			return errors.Newf(errors.ErrCodeConfiguration, "invalid cache database %d", c.Database)
		}
	}
	return nil
}
