package httpx

import (
	"net"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type TransportFunc func(http.RoundTripper) http.RoundTripper

type Option func(*clientConfig)

type clientConfig struct {
	connTimeout    time.Duration
	requestTimeout time.Duration
	keepAlive      time.Duration
	idleTimeout    time.Duration
	maxIdleConns   int
	transports     []TransportFunc
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		connTimeout:    10 * time.Second,
		requestTimeout: 30 * time.Second,
		keepAlive:      90 * time.Second,
		idleTimeout:    90 * time.Second,
		maxIdleConns:   100,
	}
}

func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

func WithConnTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.connTimeout = timeout
		}
	}
}

func WithTransport(fn TransportFunc) Option {
	return func(c *clientConfig) {
		c.transports = append(c.transports, fn)
	}
}

// WithRequestLogging logs every outbound request at debug level on the
// logger carried by the request context.
func WithRequestLogging() Option {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{next: rt}
	})
}

func newClient(opts ...Option) *http.Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	dialer := &net.Dialer{
		Timeout:   cfg.connTimeout,
		KeepAlive: cfg.keepAlive,
	}
	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.maxIdleConns,
		MaxIdleConnsPerHost: 10,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     cfg.idleTimeout,
	}
	for _, wrap := range cfg.transports {
		transport = wrap(transport)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: transport,
	}
}

type payloadContextKey struct{}

type logTransport struct {
	next http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	}
	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.Int("payload_bytes", len(payload)))
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	fields = append(fields, zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		ctxzap.Debug(ctx, "outbound request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	ctxzap.Debug(ctx, "outbound request", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}
