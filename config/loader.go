package config

import (
	"context"
	stdErrors "errors"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"

	"goeasy/cache"
	"goeasy/errors"
	"goeasy/logging"
)

// 默认配置文件名与搜索目录
const (
	DefaultConfigName = "application"
	EnvKeyPrefix      = "easy"
)

// DefaultSearchPaths 未指定配置文件时依次搜索的目录
var DefaultSearchPaths = []string{".", "./config"}

// Load 加载配置
//
// path 为空时在默认目录中搜索 application.yaml，找不到则只使用默认值与环境变量；
// path 非空但文件不存在或无法解析时返回 CONFIGURATION_ERROR。
func Load(path string) (*Properties, error) {
	v := newViper()
	logger := logging.ComponentLogger("config")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		for _, p := range DefaultSearchPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stdErrors.As(err, &notFound) {
			return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "read config failed")
		}
		logger.Info(context.Background(), "no config file found, using defaults and environment")
	} else {
		logger.Info(context.Background(), "config loaded", logging.String("file", v.ConfigFileUsed()))
	}
	return fromViper(v)
}

// Parse 从 YAML 内容加载配置，环境变量同样生效
func Parse(r io.Reader) (*Properties, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "parse config failed")
	}
	return fromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// binder 按键覆盖默认值，记录第一个转换错误
type binder struct {
	v   *viper.Viper
	err error
}

func (b *binder) key(k string) (string, bool) {
	k = EnvKeyPrefix + "." + k
	return k, b.v.IsSet(k)
}

func (b *binder) string(k string, dst *string) {
	if key, ok := b.key(k); ok {
		*dst = b.v.GetString(key)
	}
}

func (b *binder) int(k string, dst *int) {
	if key, ok := b.key(k); ok {
		*dst = b.v.GetInt(key)
	}
}

func (b *binder) int64(k string, dst *int64) {
	if key, ok := b.key(k); ok {
		*dst = b.v.GetInt64(key)
	}
}

func (b *binder) bool(k string, dst *bool) {
	if key, ok := b.key(k); ok {
		*dst = b.v.GetBool(key)
	}
}

// list 接受 YAML 列表或逗号分隔的字符串
func (b *binder) list(k string, dst *[]string) {
	key, ok := b.key(k)
	if !ok {
		return
	}
	var out []string
	for _, item := range b.v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	*dst = out
}

// duration 接受 ToSeconds 支持的格式
func (b *binder) duration(k string, dst *time.Duration) {
	key, ok := b.key(k)
	if !ok {
		return
	}
	d, err := ToDuration(b.v.GetString(key))
	if err != nil {
		if b.err == nil {
			b.err = errors.WrapError(err, errors.ErrCodeConfiguration, "invalid "+key)
		}
		return
	}
	*dst = d
}

func fromViper(v *viper.Viper) (*Properties, error) {
	p := Default()
	b := &binder{v: v}

	b.bool("production", &p.Production)
	b.string("secret", &p.Secret)
	b.string("log.level", &p.LogLevel)
	b.duration("token-ttl", &p.TokenTTL)

	var cacheType string
	b.string("cache.type", &cacheType)
	if cacheType != "" {
		typ, err := cache.ParseType(cacheType)
		if err != nil {
			return nil, err
		}
		p.Cache.Type = typ
	}
	b.string("cache.prefix", &p.Cache.Prefix)
	b.duration("cache.time-to-live", &p.Cache.TimeToLive)
	b.string("cache.host", &p.Cache.Host)
	b.int("cache.port", &p.Cache.Port)
	b.string("cache.password", &p.Cache.Password)
	b.int("cache.database", &p.Cache.Database)
	b.int("cache.capacity", &p.Cache.Capacity)
	b.bool("cache.metrics", &p.CacheMetrics)

	b.string("database.driver", &p.Database.Driver)
	b.string("database.dsn", &p.Database.DSN)
	b.int("database.max-open-conns", &p.Database.MaxOpenConns)
	b.int("database.max-idle-conns", &p.Database.MaxIdleConns)
	b.duration("database.conn-max-lifetime", &p.Database.ConnMaxLifetime)
	b.duration("database.conn-max-idle-time", &p.Database.ConnMaxIdleTime)
	b.duration("database.ping-timeout", &p.Database.PingTimeout)
	b.int("database.connect-retries", &p.Database.ConnectRetries)

	b.string("web.host", &p.Web.Host)
	b.int("web.port", &p.Web.Port)
	b.duration("web.read-timeout", &p.Web.ReadTimeout)
	b.duration("web.write-timeout", &p.Web.WriteTimeout)
	b.duration("web.idle-timeout", &p.Web.IdleTimeout)
	b.bool("web.tls-enabled", &p.Web.TLSEnabled)
	b.string("web.cert-file", &p.Web.CertFile)
	b.string("web.key-file", &p.Web.KeyFile)
	b.bool("web.cors.enabled", &p.Web.CORS.Enabled)
	b.list("web.cors.allowed-origins", &p.Web.CORS.AllowedOrigins)
	b.list("web.cors.allowed-methods", &p.Web.CORS.AllowedMethods)
	b.int("web.cors.max-age", &p.Web.CORS.MaxAge)

	b.bool("authorize.enabled", &p.Authorize.Enabled)
	b.list("authorize.ignore-uris", &p.Authorize.IgnoreURIs)

	b.bool("request-log.enabled", &p.RequestLog.Enabled)
	b.list("request-log.methods", &p.RequestLog.Methods)

	b.string("i18n.basename", &p.I18N.Basename)
	b.string("i18n.dir", &p.I18N.Dir)
	b.string("i18n.default-locale", &p.I18N.DefaultLocale)

	b.int64("snowflake.datacenter-id", &p.Snowflake.DatacenterID)
	b.int64("snowflake.worker-id", &p.Snowflake.WorkerID)

	if b.err != nil {
		return nil, b.err
	}
	if err := p.Cache.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
