package jobqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/wielerspel/peloton-api/internal/platform/logging"
	"github.com/wielerspel/peloton-api/internal/platform/resilience"
	"github.com/wielerspel/peloton-api/internal/usecase"
)

type RescrapePublisherConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Workers        int
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// RescrapePublisher asks the scraping system to refresh rider detail pages
// after a calculation touched them. Requests fan out over a worker pool; any
// single failure is counted, never fatal.
type RescrapePublisher struct {
	client         *http.Client
	baseURL        string
	token          string
	workers        int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewRescrapePublisher(cfg RescrapePublisherConfig) (*RescrapePublisher, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, crerr.New("rescrape base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &RescrapePublisher{
		client:         httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		workers:        workers,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

// PublishRiderRescrape submits one rescrape request per rider across the
// worker pool and reports how many failed.
func (p *RescrapePublisher) PublishRiderRescrape(ctx context.Context, riderIDs []string) error {
	if len(riderIDs) == 0 {
		return nil
	}

	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return crerr.Wrap(err, "create rescrape worker pool")
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, riderID := range riderIDs {
		riderID := riderID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := p.publishOne(ctx, riderID); err != nil {
				failed.Add(1)
				p.logger.WarnContext(ctx, "rider rescrape request failed", "riderID", riderID, "error", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			p.logger.WarnContext(ctx, "submit rescrape task", "riderID", riderID, "error", submitErr)
		}
	}
	wg.Wait()

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d rider rescrapes failed", n, len(riderIDs))
	}
	p.logger.InfoContext(ctx, "rider rescrapes published", "riders", len(riderIDs))
	return nil
}

type rescrapePayload struct {
	RiderID string `json:"riderID"`
}

func (p *RescrapePublisher) publishOne(ctx context.Context, riderID string) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			return fmt.Errorf("%w: scraper is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	body, err := sonic.Marshal(rescrapePayload{RiderID: riderID})
	if err != nil {
		return crerr.Wrap(err, "marshal rescrape payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/internal/rescrape/riders", bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create rescrape request")
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.recordOutcome(false)
		return crerr.Wrapf(err, "send rescrape request rider=%s", riderID)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		p.recordOutcome(false)
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return crerr.Newf("rescrape status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	p.recordOutcome(true)
	return nil
}

func (p *RescrapePublisher) recordOutcome(ok bool) {
	if !p.circuitEnabled {
		return
	}
	if ok {
		p.breaker.RecordSuccess()
	} else {
		p.breaker.RecordFailure()
	}
}
