// Package weather fetches Open-Meteo forecasts for the configured
// locations and reduces them to one narrative line per location and day.
// It is a collaborator of the agenda core: by the time the core runs, the
// finished mapping is already in hand.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Location is one forecast point.
type Location struct {
	Label string
	Lat   float64
	Lon   float64
}

// Forecast is the reduced two-day outlook for one location.
type Forecast struct {
	OK bool

	TempMax float64
	TempMin float64
	UVMax   float64
	Code    int

	PeakRainProb int
	PeakRainHour string

	TomorrowTempMax float64
	TomorrowTempMin float64
	TomorrowUVMax   float64
	TomorrowCode    int

	TomorrowPeakRainProb int
	TomorrowPeakRainHour string
}

// Client fetches forecasts. The zero value is not usable; use NewClient.
type Client struct {
	http     *http.Client
	baseURL  string
	timezone string
}

func NewClient(timezone string) *Client {
	return &Client{
		http:     &http.Client{Timeout: 15 * time.Second},
		baseURL:  defaultBaseURL,
		timezone: timezone,
	}
}

// FetchAll fetches every location concurrently, one goroutine per
// location, and returns a label-keyed map. A failed location yields a
// zero Forecast (OK=false), never an error.
func (c *Client) FetchAll(ctx context.Context, locations []Location) map[string]Forecast {
	out := make(map[string]Forecast, len(locations))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, loc := range locations {
		wg.Add(1)
		go func(loc Location) {
			defer wg.Done()
			fc := c.fetchOne(ctx, loc)
			mu.Lock()
			out[loc.Label] = fc
			mu.Unlock()
		}(loc)
	}
	wg.Wait()
	return out
}

// apiResponse mirrors the slice-parallel Open-Meteo payload shape.
type apiResponse struct {
	Daily struct {
		Time        []string  `json:"time"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		UVMax       []float64 `json:"uv_index_max"`
		Weathercode []int     `json:"weathercode"`
	} `json:"daily"`
	Hourly struct {
		Time       []string  `json:"time"`
		PrecipProb []float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

func (c *Client) fetchOne(ctx context.Context, loc Location) Forecast {
	url := fmt.Sprintf(
		"%s?latitude=%.4f&longitude=%.4f&timezone=%s&daily=temperature_2m_max,temperature_2m_min,uv_index_max,weathercode&hourly=precipitation_probability&forecast_days=2",
		c.baseURL, loc.Lat, loc.Lon, c.timezone,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		appLog.Warn("weather: bad request", "location", loc.Label, "err", err)
		return Forecast{}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		appLog.Warn("weather: fetch failed", "location", loc.Label, "err", err)
		return Forecast{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		appLog.Warn("weather: unexpected status", "location", loc.Label, "status", resp.StatusCode)
		return Forecast{}
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		appLog.Warn("weather: undecodable response", "location", loc.Label, "err", err)
		return Forecast{}
	}
	if len(data.Daily.Time) == 0 {
		appLog.Warn("weather: response missing daily data", "location", loc.Label)
		return Forecast{}
	}

	fc := Forecast{OK: true}
	fc.TempMax = at(data.Daily.TempMax, 0)
	fc.TempMin = at(data.Daily.TempMin, 0)
	fc.UVMax = at(data.Daily.UVMax, 0)
	fc.Code = atInt(data.Daily.Weathercode, 0)
	fc.PeakRainProb, fc.PeakRainHour = peakRain(data, dayPrefix(data, 0))

	if len(data.Daily.Time) > 1 {
		fc.TomorrowTempMax = at(data.Daily.TempMax, 1)
		fc.TomorrowTempMin = at(data.Daily.TempMin, 1)
		fc.TomorrowUVMax = at(data.Daily.UVMax, 1)
		fc.TomorrowCode = atInt(data.Daily.Weathercode, 1)
		fc.TomorrowPeakRainProb, fc.TomorrowPeakRainHour = peakRain(data, dayPrefix(data, 1))
	}
	return fc
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func atInt(vals []int, i int) int {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func dayPrefix(data apiResponse, i int) string {
	if i < len(data.Daily.Time) {
		return data.Daily.Time[i]
	}
	return ""
}

// peakRain scans the hourly series for the highest precipitation
// probability on the given day, returning the probability and the HH:mm
// it peaks at.
func peakRain(data apiResponse, dayPrefix string) (int, string) {
	if dayPrefix == "" {
		return 0, ""
	}
	best := -1.0
	hour := ""
	for i, ts := range data.Hourly.Time {
		if !strings.HasPrefix(ts, dayPrefix) || i >= len(data.Hourly.PrecipProb) {
			continue
		}
		if data.Hourly.PrecipProb[i] > best {
			best = data.Hourly.PrecipProb[i]
			if idx := strings.IndexByte(ts, 'T'); idx >= 0 {
				hour = ts[idx+1:]
			}
		}
	}
	if best < 0 {
		return 0, ""
	}
	return int(best), hour
}

// conditionFor maps a WMO weather code to a short description.
func conditionFor(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly cloudy"
	case code == 45 || code == 48:
		return "Foggy"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Showers"
	case code >= 95:
		return "Thunderstorms"
	default:
		return "Mixed conditions"
	}
}

// Narrative renders the one-line forecast summary for today or tomorrow.
// A failed fetch reads "Weather data unavailable."
func Narrative(fc Forecast, forTomorrow bool) string {
	if !fc.OK {
		return "Weather data unavailable."
	}

	code, tMin, tMax, uv := fc.Code, fc.TempMin, fc.TempMax, fc.UVMax
	rainProb, rainHour := fc.PeakRainProb, fc.PeakRainHour
	if forTomorrow {
		code, tMin, tMax, uv = fc.TomorrowCode, fc.TomorrowTempMin, fc.TomorrowTempMax, fc.TomorrowUVMax
		rainProb, rainHour = fc.TomorrowPeakRainProb, fc.TomorrowPeakRainHour
	}

	s := fmt.Sprintf("%s, %.0f-%.0f°C.", conditionFor(code), tMin, tMax)
	if rainProb >= 30 && rainHour != "" {
		s += fmt.Sprintf(" Rain peaks at %d%% around %s.", rainProb, rainHour)
	}
	if uv >= 8 {
		s += fmt.Sprintf(" Very high UV (%.0f).", uv)
	}
	return s
}
