// Package config 加载 easy.* 配置
//
// 配置来自 application.yaml 与环境变量，环境变量名由键名大写并将 . 与 - 替换为 _
// 得到，例如 easy.cache.time-to-live 对应 EASY_CACHE_TIME_TO_LIVE。
package config

import (
	"time"

	"goeasy/auth"
	"goeasy/cache"
	"goeasy/codegen/snowflake"
	"goeasy/data/db"
	httpx "goeasy/http"
	"goeasy/i18n"
	"goeasy/requestlog"
)

// Properties 启动器全部配置
type Properties struct {
	// Production 生产模式下令牌必须带 Bearer 前缀，日志使用 JSON 格式
	Production bool
	// Secret 令牌签名密钥
	Secret string
	// LogLevel debug、info、warn 或 error
	LogLevel string
	// TokenTTL 签发令牌的有效期
	TokenTTL time.Duration

	Cache        cache.Config
	CacheMetrics bool
	Database     db.DBConfig
	Web          httpx.WebConfig
	Authorize    auth.Config
	RequestLog   requestlog.Config
	I18N         i18n.Config
	Snowflake    snowflake.Config
}

// Default 返回默认配置
func Default() *Properties {
	return &Properties{
		Production: true,
		LogLevel:   "info",
		TokenTTL:   24 * time.Hour,
		Cache:      cache.DefaultConfig(),
		Web:        httpx.DefaultWebConfig(),
		Authorize:  auth.Config{Enabled: true},
		RequestLog: requestlog.DefaultConfig(),
		I18N:       i18n.DefaultConfig(),
		Snowflake:  snowflake.DefaultConfig(),
	}
}
