package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/logging"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Defaults for the HTTP fetcher.
const (
	DefaultRetries   = 3
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBytes  = 32 << 20
	DefaultUserAgent = "gather/1.0"
)

// Options configures an HTTP fetcher.
type Options struct {
	Retries   int
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
	// WaitMin and WaitMax bound the backoff between retries.
	WaitMin time.Duration
	WaitMax time.Duration
}

// HTTP retrieves URLs with retries and a response size limit.
type HTTP struct {
	client    *retryablehttp.Client
	maxBytes  int64
	userAgent string
}

// New creates an HTTP fetcher. Zero option values take the defaults.
func New(opts Options) *HTTP {
	if opts.Retries < 0 {
		opts.Retries = 0
	} else if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := retryablehttp.NewClient()
	client.RetryMax = opts.Retries
	if opts.WaitMin > 0 {
		client.RetryWaitMin = opts.WaitMin
	}
	if opts.WaitMax > 0 {
		client.RetryWaitMax = opts.WaitMax
	}
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = &leveledLogger{logger: logging.GetLogger("fetch")}

	return &HTTP{
		client:    client,
		maxBytes:  opts.MaxBytes,
		userAgent: opts.UserAgent,
	}
}

// Fetch issues a GET request and returns the response body. Non-2xx
// responses and bodies larger than the limit are FETCH errors.
func (h *HTTP) Fetch(url string) ([]byte, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetch, "invalid url %s", url)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetch, "failed to fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf(errors.ErrFetch, "failed to fetch %s: %s", url, resp.Status).
			WithDetail("status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetch, "failed to read %s", url)
	}
	if int64(len(body)) > h.maxBytes {
		return nil, errors.Newf(errors.ErrFetch, "response from %s exceeds %d bytes", url, h.maxBytes)
	}
	return body, nil
}

// leveledLogger routes retryablehttp's logging into zerolog.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l *leveledLogger) Error(msg string, kv ...interface{}) { l.emit(l.logger.Error(), msg, kv) }
func (l *leveledLogger) Warn(msg string, kv ...interface{})  { l.emit(l.logger.Warn(), msg, kv) }
func (l *leveledLogger) Info(msg string, kv ...interface{})  { l.emit(l.logger.Debug(), msg, kv) }
func (l *leveledLogger) Debug(msg string, kv ...interface{}) { l.emit(l.logger.Trace(), msg, kv) }

func (l *leveledLogger) emit(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		ev = ev.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	ev.Msg(msg)
}
