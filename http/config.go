package http

import (
	"fmt"
	"time"
)

// WebConfig HTTP 服务基础配置
type WebConfig struct {
	Host         string        `json:"host" yaml:"host" mapstructure:"host"`
	Port         int           `json:"port" yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read-timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write-timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout" mapstructure:"idle-timeout"`

	// TLS
	TLSEnabled bool   `json:"tls_enabled" yaml:"tls_enabled" mapstructure:"tls-enabled"`
	CertFile   string `json:"cert_file" yaml:"cert_file" mapstructure:"cert-file"`
	KeyFile    string `json:"key_file" yaml:"key_file" mapstructure:"key-file"`

	CORS CORSConfig `json:"cors" yaml:"cors" mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed-origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" mapstructure:"allowed-methods"`
	// MaxAge 预检结果缓存秒数
	MaxAge int `json:"max_age" yaml:"max_age" mapstructure:"max-age"`
}

// DefaultWebConfig 返回默认配置
func DefaultWebConfig() WebConfig {
	return WebConfig{
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			MaxAge:         18000,
		},
	}
}

// Addr 返回监听地址
func (c WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
