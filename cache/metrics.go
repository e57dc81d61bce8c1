package cache

import (
	stdErrors "errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 缓存命中与错误计数
type Metrics struct {
	lookups *prometheus.CounterVec
	errors  *prometheus.CounterVec
}

// NewMetrics 创建并注册指标；重复注册时复用已存在的收集器
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by backend and result.",
	}, []string{"backend", "result"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "errors_total",
		Help:      "Cache backend errors by operation.",
	}, []string{"backend", "operation"})

	var err error
	if lookups, err = register(reg, lookups); err != nil {
		return nil, err
	}
	if errs, err = register(reg, errs); err != nil {
		return nil, err
	}
	return &Metrics{lookups: lookups, errors: errs}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stdErrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) observeLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(backend, result).Inc()
}

func (m *Metrics) observeError(backend, op string) {
	m.errors.WithLabelValues(backend, op).Inc()
}
