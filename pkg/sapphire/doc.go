// Package sapphire is a client for the SAPPHIRE forecasting API gateway.
//
// The gateway fronts two services. Preprocessing stores observed runoff,
// hydrograph statistics, meteorological and snow series. Postprocessing
// stores model forecasts and skill metrics. Every dataset is read with
// filtered, paginated GETs and written with batched POSTs.
//
// # Usage
//
//	cfg := sapphire.DefaultConfig()
//	cfg.Target.BaseURL = "https://sapphire.example.org"
//	cfg.Target.Token = os.Getenv("SAPPHIRE_API_TOKEN")
//
//	client, err := sapphire.New(cfg, sapphire.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	rows, err := client.Preprocessing().ReadRunoff(ctx, sapphire.Query{
//	    Horizon: "day",
//	    Code:    "15013",
//	    Start:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
//	})
//
//	n, err := client.Postprocessing().WriteForecasts(ctx, forecasts)
//
// Retries, backoff and error classification live in pkg/transport; chunking
// lives in pkg/batch. This package adds the dataset catalogue, query
// validation and health checks.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package sapphire
