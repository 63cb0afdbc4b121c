// Package config loads the sitekit process configuration.
//
// Variables come from the environment, optionally seeded from .env.local and
// .env files via godotenv, and are parsed with caarlos0/env. The backend
// origin accepts NEXT_PUBLIC_API_URL or API_URL, falling back to
// http://localhost:8080 with a warning. API timeouts are milliseconds.
//
//	cfg, err := config.Load(config.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	client, err := apiclient.New(cfg.API.Origin, apiclient.WithTimeout(cfg.API.Timeout))
//
// A cache policy file (SWR_POLICY_FILE) overlays swr.DefaultPolicy:
//
//	dedup_interval: 5s
//	error_retry_count: 1
//	revalidate_on_focus: true
package config
