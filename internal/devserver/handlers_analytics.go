package devserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const maxAnalyticsHours = 24 * 31

func (s *Server) registerAnalytics(g *gin.RouterGroup) {
	g.GET("/dashboard", s.dashboard)
}

// dashboard synthesizes hourly traffic for [since, until). Counts derive from
// the hour so repeated calls agree.
func (s *Server) dashboard(c *gin.Context) {
	until := time.Now().UTC().Truncate(time.Hour)
	since := until.Add(-24 * time.Hour)
	if v, ok := parseWindowTime(c.Query("until")); ok {
		until = v
	}
	if v, ok := parseWindowTime(c.Query("since")); ok {
		since = v
	}
	if !since.Before(until) {
		fail(c, http.StatusBadRequest, "since must be before until")
		return
	}
	if until.Sub(since) > maxAnalyticsHours*time.Hour {
		since = until.Add(-maxAnalyticsHours * time.Hour)
	}

	var hours []hourStats
	for t := since.Truncate(time.Hour); t.Before(until); t = t.Add(time.Hour) {
		hours = append(hours, syntheticHour(t))
	}

	if s.opts.GroupedAnalytics {
		c.JSON(http.StatusOK, groupedBody(hours))
		return
	}
	c.JSON(http.StatusOK, aggregatedBody(hours, since, until))
}

type hourStats struct {
	Start    time.Time
	Requests int64
	Cached   int64
	Bytes    int64
	Visits   int64
	Threats  int64
}

func syntheticHour(t time.Time) hourStats {
	h := int64(t.Hour())
	day := int64(t.YearDay())
	requests := 100 + 37*h + 11*(day%7)
	return hourStats{
		Start:    t,
		Requests: requests,
		Cached:   requests * 3 / 5,
		Bytes:    requests * 2048,
		Visits:   requests / 4,
		Threats:  (h + day) % 3,
	}
}

func groupedBody(hours []hourStats) gin.H {
	groups := make([]gin.H, 0, len(hours))
	for _, h := range hours {
		groups = append(groups, gin.H{
			"count":      h.Requests,
			"dimensions": gin.H{"datetimeHour": h.Start.Format(time.RFC3339)},
			"sum":        gin.H{"edgeResponseBytes": h.Bytes, "visits": h.Visits},
		})
	}
	return gin.H{
		"data":   gin.H{"viewer": gin.H{"zones": []gin.H{{"httpRequestsAdaptiveGroups": groups}}}},
		"errors": nil,
	}
}

func aggregatedBody(hours []hourStats, since, until time.Time) gin.H {
	series := make([]gin.H, 0, len(hours))
	var total hourStats
	for _, h := range hours {
		series = append(series, pointBody(h, h.Start, h.Start.Add(time.Hour)))
		total.Requests += h.Requests
		total.Cached += h.Cached
		total.Bytes += h.Bytes
		total.Visits += h.Visits
		total.Threats += h.Threats
	}
	return gin.H{
		"success": true,
		"errors":  []any{},
		"query":   gin.H{"since": since.Format(time.RFC3339), "until": until.Format(time.RFC3339)},
		"result": gin.H{
			"timeseries": series,
			"totals":     pointBody(total, since, until),
		},
	}
}

func pointBody(h hourStats, since, until time.Time) gin.H {
	return gin.H{
		"since":     since.Format(time.RFC3339),
		"until":     until.Format(time.RFC3339),
		"requests":  gin.H{"all": h.Requests, "cached": h.Cached, "uncached": h.Requests - h.Cached},
		"bandwidth": gin.H{"all": h.Bytes},
		"threats":   gin.H{"all": h.Threats},
		"pageviews": gin.H{"all": h.Requests * 7 / 10},
		"uniques":   gin.H{"all": h.Visits},
	}
}

// parseWindowTime accepts RFC 3339, a date, or a negative minute offset from
// now as the analytics API does.
func parseWindowTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	if d, err := time.ParseDuration(v + "m"); err == nil && d < 0 {
		return time.Now().UTC().Add(d).Truncate(time.Hour), true
	}
	return time.Time{}, false
}
