package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/wielerspel/peloton-api/internal/platform/logging"
	"github.com/wielerspel/peloton-api/internal/platform/resilience"
	"github.com/wielerspel/peloton-api/internal/usecase"
)

type WebhookConfig struct {
	HTTPClient     *http.Client
	Endpoint       string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Webhook delivers admin failure notifications over a plain HTTP POST.
// Delivery is best effort; callers run it fire-and-forget.
type Webhook struct {
	client         *http.Client
	endpoint       string
	token          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhook(cfg WebhookConfig) (*Webhook, error) {
	endpoint, err := validateHTTPURL(cfg.Endpoint)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid admin notifier endpoint")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Webhook{
		client:         httpClient,
		endpoint:       endpoint,
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

type failurePayload struct {
	Subject    string `json:"subject"`
	Detail     string `json:"detail"`
	Service    string `json:"service"`
	OccurredAt string `json:"occurredAt"`
}

func (w *Webhook) NotifyFailure(ctx context.Context, subject, detail string) error {
	if w.circuitEnabled {
		if err := w.breaker.Allow(); err != nil {
			w.logger.WarnContext(ctx, "admin notifier circuit breaker rejected request", "state", w.breaker.State())
			return fmt.Errorf("%w: admin notifier is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	body, err := sonic.Marshal(failurePayload{
		Subject:    subject,
		Detail:     detail,
		Service:    "peloton-api",
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal notification payload")
	}

	preview := buildCurlPreview(w.endpoint, string(body), w.token != "")
	w.logger.DebugContext(ctx, "admin notification request", "endpoint", w.endpoint, "curl_preview", preview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create notification request")
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.recordOutcome(false)
		return crerr.Wrapf(err, "send admin notification endpoint=%s", w.endpoint)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		w.recordOutcome(false)
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return crerr.Newf("admin notification status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	w.recordOutcome(true)
	return nil
}

func (w *Webhook) recordOutcome(ok bool) {
	if !w.circuitEnabled {
		return
	}
	if ok {
		w.breaker.RecordSuccess()
	} else {
		w.breaker.RecordFailure()
	}
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

func buildCurlPreview(endpoint, body string, withToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(endpoint))
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	if withToken {
		appendPart("-H")
		appendPart(shellQuote("Authorization: Bearer ***"))
	}
	appendPart("-d")
	appendPart(shellQuote(body))
	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}
