package sapphire

import (
	"fmt"
	"sort"
	"strings"
)

// Service is one of the services behind the API gateway.
type Service string

const (
	Preprocessing  Service = "preprocessing"
	Postprocessing Service = "postprocessing"
)

// Prefix is the gateway route of the service.
func (s Service) Prefix() string {
	return "/api/" + string(s)
}

// LookupService resolves a service by name.
func LookupService(name string) (Service, error) {
	switch Service(strings.ToLower(strings.TrimSpace(name))) {
	case Preprocessing:
		return Preprocessing, nil
	case Postprocessing:
		return Postprocessing, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownService, name)
}

// Filters a dataset accepts besides code, skip and limit.
type filter uint8

const (
	filterHorizon filter = 1 << iota
	filterDates
	filterModel
)

// Dataset is a collection exposed by one service.
type Dataset struct {
	// Name is the route segment, e.g. "runoff".
	Name    string
	Service Service

	// TypeParam is the query parameter carrying Query.Type, if any.
	TypeParam  string
	TypeValues []string

	filters filter
}

// Path is the collection route relative to the gateway, with trailing slash.
func (d Dataset) Path() string {
	return d.Service.Prefix() + "/" + d.Name + "/"
}

func (d Dataset) String() string {
	return string(d.Service) + "/" + d.Name
}

// Accepts reports whether the dataset can be filtered by the query
// parameter name.
func (d Dataset) Accepts(param string) bool {
	switch param {
	case "code", "skip", "limit":
		return true
	case "horizon":
		return d.filters&filterHorizon != 0
	case "start_date", "end_date":
		return d.filters&filterDates != 0
	case "model":
		return d.filters&filterModel != 0
	}
	return param != "" && param == d.TypeParam
}

// Filters lists the filter parameters the dataset accepts, skip and limit
// aside.
func (d Dataset) Filters() []string {
	var out []string
	for _, p := range []string{"code", "horizon", d.TypeParam, "model", "start_date", "end_date"} {
		if d.Accepts(p) {
			out = append(out, p)
		}
	}
	return out
}

// Valid values of the enumerated filters.
var (
	Horizons       = []string{"day", "pentad", "decade", "month", "season", "year"}
	MeteoTypes     = []string{"T", "P"}
	SnowTypes      = []string{"HS", "ROF", "SWE"}
	ForecastModels = []string{"TFT", "TiDE", "TSMixer", "LR", "EM", "NE"}
)

// The datasets served by the gateway.
var (
	Runoff = Dataset{Name: "runoff", Service: Preprocessing, filters: filterHorizon | filterDates}

	Hydrograph = Dataset{Name: "hydrograph", Service: Preprocessing, filters: filterHorizon | filterDates}

	Meteo = Dataset{Name: "meteo", Service: Preprocessing, TypeParam: "meteo_type", TypeValues: MeteoTypes, filters: filterDates}

	Snow = Dataset{Name: "snow", Service: Preprocessing, TypeParam: "snow_type", TypeValues: SnowTypes, filters: filterDates}

	Forecasts = Dataset{Name: "forecasts", Service: Postprocessing, filters: filterHorizon | filterDates}

	LRForecasts = Dataset{Name: "lr-forecasts", Service: Postprocessing, filters: filterHorizon | filterDates}

	SkillMetrics = Dataset{Name: "skill-metrics", Service: Postprocessing, filters: filterHorizon | filterModel}
)

var datasets = map[string]Dataset{}

func init() {
	for _, d := range []Dataset{Runoff, Hydrograph, Meteo, Snow, Forecasts, LRForecasts, SkillMetrics} {
		datasets[d.Name] = d
	}
}

// Datasets returns every known dataset sorted by service and name.
func Datasets() []Dataset {
	out := make([]Dataset, 0, len(datasets))
	for _, d := range datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Service != out[j].Service {
			return out[i].Service < out[j].Service
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// LookupDataset resolves a dataset by name. "lr_forecasts" and
// "skill_metrics" are accepted as aliases.
func LookupDataset(name string) (Dataset, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if d, ok := datasets[key]; ok {
		return d, nil
	}
	return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
}
