// Package sapphire is the short import path for the SAPPHIRE API client.
//
// Example usage:
//
//	cfg := sapphire.DefaultConfig()
//	cfg.Target.BaseURL = "https://sapphire.example.org"
//	cfg.Target.Token = os.Getenv("SAPPHIRE_API_TOKEN")
//	client, err := sapphire.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n, err := client.Write(ctx, sapphire.Runoff, records)
//
// The full API lives in pkg/sapphire, pkg/transport and pkg/batch.
package sapphire

import (
	client "github.com/sapphire-forecast/sapphire-go/pkg/sapphire"
)

// Config holds the connection and batching settings of a Client.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = client.Config

// Client reads and writes SAPPHIRE datasets.
type Client = client.Client

// Query filters and paginates a dataset read.
type Query = client.Query

// Dataset identifies one table behind the gateway.
type Dataset = client.Dataset

// Option configures a Client.
type Option = client.Option

// Datasets exposed by the gateway.
var (
	Runoff       = client.Runoff
	Hydrograph   = client.Hydrograph
	Meteo        = client.Meteo
	Snow         = client.Snow
	Forecasts    = client.Forecasts
	LRForecasts  = client.LRForecasts
	SkillMetrics = client.SkillMetrics
)

// DefaultConfig returns a Config with sensible default values.
// Target.BaseURL defaults to a local gateway.
func DefaultConfig() Config {
	return client.DefaultConfig()
}

// New validates cfg and returns a ready Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	return client.New(cfg, opts...)
}
