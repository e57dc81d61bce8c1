// Package starter 按 config.Properties 组装日志、缓存、数据库、国际化、授权与 HTTP 服务，
// 并管理它们的启动与优雅退出。
package starter

import (
	"context"
	stdErrors "errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"goeasy/auth"
	"goeasy/cache"
	"goeasy/codegen/snowflake"
	"goeasy/config"
	"goeasy/controller"
	dbcore "goeasy/data/db"
	dbbasic "goeasy/data/db/basic"
	"goeasy/data/orm"
	ormbasic "goeasy/data/orm/basic"
	"goeasy/errors"
	"goeasy/http/basic"
	"goeasy/i18n"
	"goeasy/logging"
	"goeasy/requestlog"
	"goeasy/retry"
)

// DefaultShutdownTimeout 优雅退出的默认超时
const DefaultShutdownTimeout = 10 * time.Second

// Option 启动器选项
type Option func(*options)

type options struct {
	logger          logging.Logger
	messages        fs.FS
	checker         auth.ITokenChecker
	filters         []auth.IFilter
	processor       requestlog.Processor
	registerer      prometheus.Registerer
	shutdownTimeout time.Duration
}

// WithLogger 使用指定日志，不再按配置创建 zap 日志
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMessages 指定消息资源文件系统，默认为 os.DirFS(I18N.Dir)
func WithMessages(fsys fs.FS) Option {
	return func(o *options) { o.messages = fsys }
}

// WithTokenChecker 替换默认的 JWT 令牌校验
func WithTokenChecker(checker auth.ITokenChecker) Option {
	return func(o *options) { o.checker = checker }
}

// WithFilters 追加令牌校验通过后的附加检查
func WithFilters(filters ...auth.IFilter) Option {
	return func(o *options) { o.filters = append(o.filters, filters...) }
}

// WithRequestLogProcessor 替换默认的请求日志处理器
func WithRequestLogProcessor(p requestlog.Processor) Option {
	return func(o *options) { o.processor = p }
}

// WithRegisterer 指定缓存指标的注册器，默认 prometheus.DefaultRegisterer
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithShutdownTimeout 设置优雅退出超时
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

type closer struct {
	name  string
	close func() error
}

// Starter 组装完成的应用
type Starter struct {
	props      *config.Properties
	logger     logging.Logger
	cache      *cache.Cache
	database   dbcore.IDatabase
	orm        orm.IOrm
	ids        *snowflake.Generator
	messages   *i18n.MessageSource
	tokens     *auth.JWTAuthorizer
	authorizer *auth.Authorizer
	requestLog *requestlog.RequestLog
	server     *basic.HttpServer

	closers         []closer
	shutdownTimeout time.Duration
}

// New 按配置组装各组件，任一组件失败时关闭已创建的资源并返回错误
func New(props *config.Properties, opts ...Option) (*Starter, error) {
	if props == nil {
		props = config.Default()
	}
	o := &options{shutdownTimeout: DefaultShutdownTimeout}
	for _, opt := range opts {
		opt(o)
	}

	s := &Starter{props: props, shutdownTimeout: o.shutdownTimeout}
	if err := s.init(o); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Starter) init(o *options) error {
	if err := s.initLogger(o); err != nil {
		return err
	}
	ctx := context.Background()
	props := s.props

	cacheOpts := []cache.Option{}
	if props.CacheMetrics {
		reg := o.registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		m, err := cache.NewMetrics(reg, "easy")
		if err != nil {
			return errors.WrapError(err, errors.ErrCodeConfiguration, "register cache metrics")
		}
		cacheOpts = append(cacheOpts, cache.WithMetrics(m))
	}
	c, err := cache.New(props.Cache, cacheOpts...)
	if err != nil {
		return err
	}
	s.cache = c
	s.closers = append(s.closers, closer{"cache", c.Close})

	if props.Database.Enabled() {
		d, err := s.openDatabase(ctx)
		if err != nil {
			return err
		}
		s.database = d
		s.orm = ormbasic.New(d)
		s.closers = append(s.closers, closer{"database", d.Close})
	}

	if s.ids, err = snowflake.New(props.Snowflake); err != nil {
		return err
	}

	fsys := o.messages
	if fsys == nil {
		fsys = os.DirFS(props.I18N.Dir)
	}
	if s.messages, err = i18n.Load(fsys, props.I18N); err != nil {
		return err
	}

	checker := o.checker
	if checker == nil && props.Secret != "" {
		if s.tokens, err = auth.NewJWTAuthorizer(props.Secret); err != nil {
			return err
		}
		checker = s.tokens
	}
	if checker == nil && props.Authorize.Enabled {
		return errors.NewError(errors.ErrCodeConfiguration, "authorize is enabled but neither secret nor token checker is configured")
	}
	s.authorizer = auth.New(checker, props.Production, props.Authorize.IgnoreURIs, o.filters...)
	s.requestLog = requestlog.New(props.RequestLog, o.processor)

	s.server = basic.NewHTTPServer(props.Web)
	s.server.Use(i18n.Middleware(s.messages))
	if props.Authorize.Enabled {
		s.server.Use(auth.Middleware(s.authorizer))
	}
	if props.RequestLog.Enabled {
		s.server.Use(s.requestLog.Middleware())
	}
	controller.NewI18NController(s.messages).Register(s.server.Group(""))
	s.authorizer.IgnoreRoute("GET", controller.RouteLocale)
	s.authorizer.IgnoreRoute("GET", controller.RouteMessages)

	s.logger.Info(ctx, "starter initialized",
		logging.String("cache", s.cache.BackendName()),
		logging.Bool("database", s.database != nil),
		logging.Bool("authorize", props.Authorize.Enabled),
		logging.Bool("request_log", props.RequestLog.Enabled),
		logging.Bool("production", props.Production))
	return nil
}

func (s *Starter) initLogger(o *options) error {
	if o.logger != nil {
		s.logger = o.logger
		logging.SetLogger(o.logger)
		return nil
	}
	z, err := logging.NewZapLogger(logging.ParseLevel(s.props.LogLevel), s.props.Production)
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeConfiguration, "build logger")
	}
	s.logger = z
	logging.SetLogger(z)
	s.closers = append(s.closers, closer{"logger", func() error {
		// stdout/stderr 不支持 fsync，忽略同步错误
		_ = z.Sync()
		return nil
	}})
	return nil
}

// openDatabase 连接失败（非配置错误）时按 ConnectRetries 退避重试
func (s *Starter) openDatabase(ctx context.Context) (*dbbasic.DB, error) {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 1 + s.props.Database.ConnectRetries
	cfg.Retryable = func(err error) bool {
		return !errors.IsErrorCode(err, errors.ErrCodeConfiguration)
	}

	var d *dbbasic.DB
	err := retry.Do(ctx, cfg, func(ctx context.Context, attempt int) error {
		var err error
		if d, err = dbbasic.New(s.props.Database); err != nil {
			s.logger.Warn(ctx, "connect database failed",
				logging.Int("attempt", attempt), logging.Error(err))
		}
		return err
	})
	return d, err
}

func (s *Starter) Properties() *config.Properties     { return s.props }
func (s *Starter) Logger() logging.Logger             { return s.logger }
func (s *Starter) Cache() *cache.Cache                { return s.cache }
func (s *Starter) Messages() *i18n.MessageSource      { return s.messages }
func (s *Starter) Authorizer() *auth.Authorizer       { return s.authorizer }
func (s *Starter) RequestLog() *requestlog.RequestLog { return s.requestLog }
func (s *Starter) Server() *basic.HttpServer          { return s.server }
func (s *Starter) IDs() snowflake.IGenerator          { return s.ids }
func (s *Starter) Database() dbcore.IDatabase         { return s.database }
func (s *Starter) Orm() orm.IOrm                      { return s.orm }

// Tokens 返回按 Secret 创建的 JWT 签发器，使用自定义校验时为 nil
func (s *Starter) Tokens() *auth.JWTAuthorizer { return s.tokens }

// Run 启动 HTTP 服务，直到 ctx 结束、收到 SIGINT/SIGTERM 或服务异常退出，
// 然后停止服务并关闭全部资源
func (s *Starter) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startAt := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Start("")
	}()

	var runErr error
	finished := false
	select {
	case <-ctx.Done():
		s.logger.Info(context.Background(), "shutdown signal received")
	case runErr = <-errCh:
		finished = true
		if runErr != nil {
			s.logger.Error(context.Background(), "http server start error", logging.Error(runErr))
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancelShutdown()

	errs := []error{runErr}
	if err := s.server.Stop(shutdownCtx); err != nil {
		s.logger.Warn(shutdownCtx, "http server stop error", logging.Error(err))
		errs = append(errs, err)
	}
	if !finished {
		select {
		case err := <-errCh:
			errs = append(errs, err)
		case <-shutdownCtx.Done():
			s.logger.Warn(shutdownCtx, "http server shutdown timeout",
				logging.Int64("timeout_ms", s.shutdownTimeout.Milliseconds()))
		}
	}
	errs = append(errs, s.Close())
	s.logger.Info(shutdownCtx, "starter stopped", logging.Int64("ms", time.Since(startAt).Milliseconds()))
	return stdErrors.Join(errs...)
}

// Close 按创建的逆序关闭资源，可重复调用
func (s *Starter) Close() error {
	closers := s.closers
	s.closers = nil

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.close(); err != nil {
			if s.logger != nil {
				s.logger.Warn(context.Background(), "close error", logging.String("name", c.name), logging.Error(err))
			}
			errs = append(errs, err)
		}
	}
	return stdErrors.Join(errs...)
}
