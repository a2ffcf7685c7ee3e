package analytics

import (
	"net/url"
	"strconv"

	"github.com/kanellos-me/console/internal/normalize"
	"github.com/tidwall/gjson"
)

// Query selects the reporting window.
type Query struct {
	Since      string
	Until      string
	TimeDelta  string
	Continuous *bool
}

// Values encodes the set fields as query parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Since != "" {
		v.Set("since", q.Since)
	}
	if q.Until != "" {
		v.Set("until", q.Until)
	}
	if q.TimeDelta != "" {
		v.Set("time_delta", q.TimeDelta)
	}
	if q.Continuous != nil {
		v.Set("continuous", strconv.FormatBool(*q.Continuous))
	}
	return v
}

// Counter is one metric split by cache status.
type Counter struct {
	All      int64 `json:"all"`
	Cached   int64 `json:"cached,omitempty"`
	Uncached int64 `json:"uncached,omitempty"`
}

// Point is one interval of traffic.
type Point struct {
	Since     string  `json:"since"`
	Until     string  `json:"until"`
	Requests  Counter `json:"requests"`
	Bandwidth Counter `json:"bandwidth"`
	Threats   Counter `json:"threats"`
	Pageviews Counter `json:"pageviews"`
	Uniques   Counter `json:"uniques"`
}

// Shape tags which response form a dashboard was built from.
type Shape int

const (
	ShapeAggregated Shape = iota
	ShapeGrouped
)

func (s Shape) String() string {
	if s == ShapeGrouped {
		return "grouped"
	}
	return "aggregated"
}

// Dashboard is the normalized analytics result.
type Dashboard struct {
	Shape      Shape   `json:"-"`
	Timeseries []Point `json:"timeseries"`
	Totals     *Point  `json:"totals,omitempty"`
}

// ChartPoint is one bar of the traffic chart.
type ChartPoint struct {
	Date      string `json:"date"`
	Requests  int64  `json:"requests"`
	Bandwidth int64  `json:"bandwidth"`
}

func (d *Dashboard) total(fn func(Point) Counter) int64 {
	if d == nil || d.Totals == nil {
		return 0
	}
	return fn(*d.Totals).All
}

func (d *Dashboard) TotalRequests() int64 {
	return d.total(func(p Point) Counter { return p.Requests })
}

func (d *Dashboard) TotalBandwidth() int64 {
	return d.total(func(p Point) Counter { return p.Bandwidth })
}

func (d *Dashboard) TotalThreats() int64 {
	return d.total(func(p Point) Counter { return p.Threats })
}

func (d *Dashboard) TotalPageviews() int64 {
	return d.total(func(p Point) Counter { return p.Pageviews })
}

func (d *Dashboard) TotalUniques() int64 {
	return d.total(func(p Point) Counter { return p.Uniques })
}

// ChartData dates each point by its end, or its start when it has none.
func (d *Dashboard) ChartData() []ChartPoint {
	if d == nil {
		return nil
	}
	out := make([]ChartPoint, 0, len(d.Timeseries))
	for _, p := range d.Timeseries {
		date := p.Until
		if date == "" {
			date = p.Since
		}
		out = append(out, ChartPoint{Date: date, Requests: p.Requests.All, Bandwidth: p.Bandwidth.All})
	}
	return out
}

const groupsPath = "data.viewer.zones"

// parseDashboard recognises the aggregated {result:{timeseries,totals}} form
// and the raw grouped form, which is folded into hourly points.
func parseDashboard(raw gjson.Result) (*Dashboard, error) {
	if raw.Get(groupsPath).IsArray() {
		return parseGrouped(raw.Get(groupsPath + ".0.httpRequestsAdaptiveGroups")), nil
	}
	if !raw.IsObject() {
		return nil, normalize.ErrUnexpectedShape
	}
	d := &Dashboard{Shape: ShapeAggregated, Timeseries: []Point{}}
	result := raw.Get("result")
	for _, p := range result.Get("timeseries").Array() {
		d.Timeseries = append(d.Timeseries, parsePoint(p))
	}
	if totals := result.Get("totals"); totals.IsObject() {
		t := parsePoint(totals)
		d.Totals = &t
	}
	return d, nil
}

func parsePoint(p gjson.Result) Point {
	counter := func(name string) Counter {
		c := p.Get(name)
		if !c.IsObject() {
			return Counter{All: c.Int()}
		}
		return Counter{All: c.Get("all").Int(), Cached: c.Get("cached").Int(), Uncached: c.Get("uncached").Int()}
	}
	return Point{
		Since:     p.Get("since").String(),
		Until:     p.Get("until").String(),
		Requests:  counter("requests"),
		Bandwidth: counter("bandwidth"),
		Threats:   counter("threats"),
		Pageviews: counter("pageviews"),
		Uniques:   counter("uniques"),
	}
}

func parseGrouped(groups gjson.Result) *Dashboard {
	d := &Dashboard{Shape: ShapeGrouped, Timeseries: []Point{}}
	var totals Point
	for _, g := range groups.Array() {
		hour := g.Get("dimensions.datetimeHour").String()
		count := g.Get("count").Int()
		bytes := g.Get("sum.edgeResponseBytes").Int()
		visits := g.Get("sum.visits").Int()

		d.Timeseries = append(d.Timeseries, Point{
			Since:     hour,
			Until:     hour,
			Requests:  Counter{All: count},
			Bandwidth: Counter{All: bytes},
			Pageviews: Counter{All: count},
			Uniques:   Counter{All: visits},
		})
		totals.Requests.All += count
		totals.Bandwidth.All += bytes
		totals.Pageviews.All += count
		totals.Uniques.All += visits
	}
	d.Totals = &totals
	return d
}
