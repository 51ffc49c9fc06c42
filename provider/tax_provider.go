package provider

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/lotto-ledger/config"
	"github.com/Digital-Creators-Team/lotto-ledger/httpclient"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/treasury"
)

const (
	taxCollectPath = "/tax/collect"
	taxSubsidyPath = "/tax/subsidy"
	taxQueueSize   = 1024
)

var _ providers.TaxAuthority = (*TaxAuthorityClient)(nil)

// TaxRequest is the body posted to the remote treasury.
type TaxRequest struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	AmountMajor string    `json:"amount_major"`
	Timestamp   time.Time `json:"timestamp"`
}

type taxJob struct {
	path string
	req  TaxRequest
}

// TaxAuthorityClient forwards taxes and subsidies to a remote treasury.
// Calls never block the ledger: they are recorded in a local budget and
// queued for a background worker, which retries through httpclient.
type TaxAuthorityClient struct {
	client *httpclient.Client
	local  *treasury.Budget
	logger zerolog.Logger

	jobs      chan taxJob
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu      sync.Mutex
	closed  bool
	failed  int
	dropped int
}

// NewTaxAuthorityClient starts the delivery worker.
func NewTaxAuthorityClient(cfg config.ServiceConfig, logger zerolog.Logger) *TaxAuthorityClient {
	c := &TaxAuthorityClient{
		client: httpclient.New(httpclient.Config{
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			Logger:     logger,
			MaxRetries: 3,
		}),
		local:  treasury.NewBudget(),
		logger: logger.With().Str("component", "tax_provider").Logger(),
		jobs:   make(chan taxJob, taxQueueSize),
	}
	if cfg.APIKey != "" {
		c.client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	c.wg.Add(1)
	go c.worker()
	return c
}

// CollectTax records and forwards a remittance.
func (c *TaxAuthorityClient) CollectTax(amount int64) {
	c.local.CollectTax(amount)
	c.enqueue(taxCollectPath, amount)
}

// GiveSubsidy records and forwards a subsidy.
func (c *TaxAuthorityClient) GiveSubsidy(amount int64) {
	c.local.GiveSubsidy(amount)
	c.enqueue(taxSubsidyPath, amount)
}

// Budget is the local mirror of everything reported.
func (c *TaxAuthorityClient) Budget() *treasury.Budget {
	return c.local
}

// Failures returns how many deliveries failed and how many were dropped
// because the queue was full or the client was already closed.
func (c *TaxAuthorityClient) Failures() (failed, dropped int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed, c.dropped
}

func (c *TaxAuthorityClient) enqueue(path string, amount int64) {
	job := taxJob{
		path: path,
		req: TaxRequest{
			ID:          uuid.NewString(),
			Amount:      amount,
			AmountMajor: decimal.New(amount, -2).StringFixed(2),
			Timestamp:   time.Now(),
		},
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.dropped++
		c.logger.Error().Str("path", path).Int64("amount", amount).Msg("Tax client closed, dropping event")
		return
	}
	select {
	case c.jobs <- job:
	default:
		c.dropped++
		c.logger.Error().Str("path", path).Int64("amount", amount).Msg("Tax queue full, dropping event")
	}
}

func (c *TaxAuthorityClient) worker() {
	defer c.wg.Done()
	for job := range c.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := c.client.PostJSON(ctx, job.path, job.req, map[string]string{"Idempotency-Key": job.req.ID}, nil)
		cancel()
		if err != nil {
			c.mu.Lock()
			c.failed++
			c.mu.Unlock()
			c.logger.Error().
				Err(err).
				Str("path", job.path).
				Str("id", job.req.ID).
				Int64("amount", job.req.Amount).
				Msg("Failed to deliver tax event")
		}
	}
}

// Close delivers what is queued and stops the worker.
func (c *TaxAuthorityClient) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.jobs)
		c.mu.Unlock()
		c.wg.Wait()
	})
}
