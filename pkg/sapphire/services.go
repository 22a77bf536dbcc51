package sapphire

import (
	"context"

	"github.com/sapphire-forecast/sapphire-go/pkg/record"
)

// PreprocessingClient reads and writes the preprocessing datasets.
type PreprocessingClient struct {
	c *Client
}

// Preprocessing returns the preprocessing view of the client.
func (c *Client) Preprocessing() PreprocessingClient {
	return PreprocessingClient{c: c}
}

// Health reports whether the preprocessing service is healthy.
func (p PreprocessingClient) Health(ctx context.Context) bool {
	return p.c.Health(ctx, Preprocessing)
}

// Ready reports whether the preprocessing service is ready.
func (p PreprocessingClient) Ready(ctx context.Context) bool {
	return p.c.Ready(ctx, Preprocessing)
}

func (p PreprocessingClient) ReadRunoff(ctx context.Context, q Query) ([]record.Record, error) {
	return p.c.Read(ctx, Runoff, q)
}

func (p PreprocessingClient) WriteRunoff(ctx context.Context, records []record.Record) (int, error) {
	return p.c.Write(ctx, Runoff, records)
}

func (p PreprocessingClient) ReadHydrograph(ctx context.Context, q Query) ([]record.Record, error) {
	return p.c.Read(ctx, Hydrograph, q)
}

func (p PreprocessingClient) WriteHydrograph(ctx context.Context, records []record.Record) (int, error) {
	return p.c.Write(ctx, Hydrograph, records)
}

// ReadMeteo reads meteorological series; q.Type selects T or P.
func (p PreprocessingClient) ReadMeteo(ctx context.Context, q Query) ([]record.Record, error) {
	return p.c.Read(ctx, Meteo, q)
}

func (p PreprocessingClient) WriteMeteo(ctx context.Context, records []record.Record) (int, error) {
	return p.c.Write(ctx, Meteo, records)
}

// ReadSnow reads snow series; q.Type selects HS, ROF or SWE.
func (p PreprocessingClient) ReadSnow(ctx context.Context, q Query) ([]record.Record, error) {
	return p.c.Read(ctx, Snow, q)
}

func (p PreprocessingClient) WriteSnow(ctx context.Context, records []record.Record) (int, error) {
	return p.c.Write(ctx, Snow, records)
}

// PostprocessingClient reads and writes forecasts and skill metrics.
type PostprocessingClient struct {
	c *Client
}

// Postprocessing returns the postprocessing view of the client.
func (c *Client) Postprocessing() PostprocessingClient {
	return PostprocessingClient{c: c}
}

// Health reports whether the postprocessing service is healthy.
func (p PostprocessingClient) Health(ctx context.Context) bool {
	return p.c.Health(ctx, Postprocessing)
}

// Ready reports whether the postprocessing service is ready.
func (p PostprocessingClient) Ready(ctx context.Context) bool {
	return p.c.Ready(ctx, Postprocessing)
}

func (p PostprocessingClient) ReadForecasts(ctx context.Context, q Query) ([]record.Record, error) {
	return p.c.Read(ctx, Forecasts, q)
}

func (p PostprocessingClient) WriteForecasts(ctx context.Context, records []record.Record) (int, error) {
	return p.c.Write(ctx, Forecasts, records)
}

// ReadLRForecasts reads linear regression forecasts.
func (p PostprocessingClient) ReadLRForecasts(ctx context.Context, q Query) ([]record.Record, error) {
	return p.c.Read(ctx, LRForecasts, q)
}

func (p PostprocessingClient) WriteLRForecasts(ctx context.Context, records []record.Record) (int, error) {
	return p.c.Write(ctx, LRForecasts, records)
}

// ReadSkillMetrics reads per-model skill metrics; q.Model filters by model.
func (p PostprocessingClient) ReadSkillMetrics(ctx context.Context, q Query) ([]record.Record, error) {
	return p.c.Read(ctx, SkillMetrics, q)
}

func (p PostprocessingClient) WriteSkillMetrics(ctx context.Context, records []record.Record) (int, error) {
	return p.c.Write(ctx, SkillMetrics, records)
}
