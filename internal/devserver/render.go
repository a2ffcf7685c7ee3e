package devserver

import (
	"github.com/gin-gonic/gin"
	"github.com/kanellos-me/console/internal/normalize"
)

// record is a response object with camelCase keys; rendering applies the
// configured casing.
type record map[string]any

func (s *Server) recase(r record) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[s.key(k)] = s.recaseValue(v)
	}
	return out
}

func (s *Server) recaseValue(v any) any {
	switch t := v.(type) {
	case record:
		return s.recase(t)
	case []record:
		out := make([]map[string]any, 0, len(t))
		for _, r := range t {
			out = append(out, s.recase(r))
		}
		return out
	default:
		return v
	}
}

func (s *Server) key(k string) string {
	switch s.opts.Casing {
	case SnakeCase:
		return normalize.SnakeCase(k)
	case PascalCase:
		return normalize.PascalCase(k)
	default:
		return k
	}
}

// renderList writes a collection wrapped per the configured envelope; name is
// the resource-named key.
func (s *Server) renderList(c *gin.Context, status int, name string, items []record) {
	body := s.recaseValue(items)
	switch s.opts.Envelope {
	case DataKey:
		c.JSON(status, gin.H{"data": body})
	case ItemsKey:
		c.JSON(status, gin.H{"items": body})
	case Named:
		c.JSON(status, gin.H{name: body})
	default:
		c.JSON(status, body)
	}
}

func (s *Server) renderOne(c *gin.Context, status int, r record) {
	c.JSON(status, s.recase(r))
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
