package main

import (
	"fmt"

	"igcrawler/pkg/crawler"
	"igcrawler/pkg/instagram"
	"igcrawler/pkg/ratelimit"
	"igcrawler/pkg/session"
)

// newClient builds the authenticated client over the configured session
// store, applying the user-agent override when set
func newClient() (*instagram.Client, session.Store, error) {
	store, err := session.NewStore(&cfg.Session, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client := instagram.NewClient(cfg.RateLimit.RequestTimeout, store, log)
	if cfg.Instagram.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Instagram.UserAgent)
	}
	return client, store, nil
}

// newLoggedInCrawler restores or establishes a verified session and wires
// the rate-limited requester under a crawler. Credentials supplied via
// config or environment take precedence over the persisted session.
func newLoggedInCrawler() (*crawler.Crawler, error) {
	client, _, err := newClient()
	if err != nil {
		return nil, err
	}

	if cfg.Instagram.SessionID != "" {
		if err := client.SetCredentials(cfg.Instagram.SessionID, cfg.Instagram.CSRFToken, cfg.Instagram.ClaimToken); err != nil {
			return nil, fmt.Errorf("configured credentials rejected: %w", err)
		}
	} else if !client.Initialize() {
		return nil, fmt.Errorf("not logged in: run 'igcrawler auth login' first")
	}

	limiter := ratelimit.NewFixedDelay(cfg.RateLimit.RequestDelay, cfg.RateLimit.JitterMax)
	requester := instagram.NewRequester(client, limiter, cfg.RateLimit.Cooldown, cfg.RateLimit.MaxRetries, log)
	return crawler.New(requester, cfg.Crawl.MaxPages, log), nil
}
