package devserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports what the in-memory backend is holding and which response
// shapes it was started with.
type Health struct {
	Status   string         `json:"status"`
	Service  string         `json:"service"`
	Uptime   string         `json:"uptime"`
	Casing   string         `json:"casing"`
	Envelope string         `json:"envelope"`
	Records  map[string]int `json:"records"`
}

func (c Casing) String() string {
	switch c {
	case SnakeCase:
		return "snake"
	case PascalCase:
		return "pascal"
	}
	return "camel"
}

func (e Envelope) String() string {
	switch e {
	case DataKey:
		return "data"
	case ItemsKey:
		return "items"
	case Named:
		return "named"
	}
	return "bare"
}

func (s *Server) health(c *gin.Context) {
	s.mu.RLock()
	replies := 0
	for _, rs := range s.replies {
		replies += len(rs)
	}
	records := map[string]int{
		"users":    len(s.users),
		"sessions": len(s.sessions),
		"tickets":  len(s.tickets),
		"replies":  replies,
		"showcase": len(s.showcase),
		"demos":    len(s.demos),
		"files":    len(s.files),
	}
	s.mu.RUnlock()

	c.JSON(http.StatusOK, Health{
		Status:   "healthy",
		Service:  defaultService,
		Uptime:   time.Since(s.startedAt).Round(time.Second).String(),
		Casing:   s.opts.Casing.String(),
		Envelope: s.opts.Envelope.String(),
		Records:  records,
	})
}

func (s *Server) registerHealth(r gin.IRouter) {
	r.GET("/health", s.health)
	r.GET("/healthz", s.health)
}
