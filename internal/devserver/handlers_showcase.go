package devserver

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kanellos-me/console/internal/slug"
)

const maxUploadBytes = 10 << 20

type contentRequest struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	HTMLContent string   `json:"htmlContent"`
	ImageURLs   []string `json:"imageUrls"`
	UserIDs     []string `json:"userIds"`
}

func (s *Server) registerShowcase(g *gin.RouterGroup) {
	// uploaded files are addressed by unguessable ids and served without a
	// session so image tags work
	g.GET("/files/:id", s.serveFile)

	authed := g.Group("", requireUser())
	authed.GET("", s.listShowcase)
	authed.GET("/slug/:slug", s.showcaseBySlug)

	admin := g.Group("", requireAdmin())
	admin.POST("", s.createShowcase)
	admin.DELETE("/:id", s.deleteShowcase)
	if !s.opts.DisableUpload {
		admin.POST("/upload", s.uploadImage)
	}
}

func (s *Server) listShowcase(c *gin.Context) {
	u := currentUser(c)
	s.mu.RLock()
	out := make([]record, 0, len(s.showcase))
	for _, it := range s.showcase {
		if visibleTo(u, it.UserIDs) {
			out = append(out, it.record())
		}
	}
	s.mu.RUnlock()
	s.renderList(c, http.StatusOK, "showcase", out)
}

func (s *Server) showcaseBySlug(c *gin.Context) {
	u := currentUser(c)
	s.mu.RLock()
	var found *showcaseItem
	for _, it := range s.showcase {
		if it.Slug == c.Param("slug") {
			found = it
			break
		}
	}
	var rec record
	allowed := found != nil && visibleTo(u, found.UserIDs)
	if allowed {
		rec = found.record()
	}
	s.mu.RUnlock()

	switch {
	case found == nil:
		c.Status(http.StatusNotFound)
	case !allowed:
		c.Status(http.StatusForbidden)
	default:
		s.renderOne(c, http.StatusOK, rec)
	}
}

func (s *Server) createShowcase(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}
	kind := "site"
	if req.Type == "gallery" || req.Type == "photo" {
		kind = "gallery"
		if len(req.ImageURLs) == 0 {
			fail(c, http.StatusBadRequest, "a gallery needs at least one image")
			return
		}
	}
	it := &showcaseItem{
		ID:          uuid.NewString(),
		Type:        kind,
		Title:       title,
		Slug:        slug.Resolve(req.Slug, title, "item"),
		HTMLContent: req.HTMLContent,
		ImageURLs:   req.ImageURLs,
		UserIDs:     req.UserIDs,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.showcase {
		if other.Slug == it.Slug {
			fail(c, http.StatusConflict, "slug already in use")
			return
		}
	}
	s.showcase = append(s.showcase, it)
	s.renderOne(c, http.StatusCreated, it.record())
}

func (s *Server) deleteShowcase(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.showcase {
		if it.ID == c.Param("id") {
			s.showcase = append(s.showcase[:i], s.showcase[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	fail(c, http.StatusNotFound, "item not found")
}

func (s *Server) uploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > maxUploadBytes {
		fail(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "unreadable upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, "unreadable upload")
		return
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.files[id] = upload{ContentType: ct, Data: data}
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"url": strings.TrimRight(s.opts.PublicURL, "/") + "/api/showcase/files/" + id})
}

func (s *Server) serveFile(c *gin.Context) {
	s.mu.RLock()
	f, ok := s.files[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

func (s *Server) registerDemos(g *gin.RouterGroup) {
	g.GET("", s.listDemos)
	g.GET("/slug/:slug", s.demoBySlug)
	g.POST("", requireAdmin(), s.createDemo)
	g.DELETE("/:id", requireAdmin(), s.deleteDemo)
}

func (s *Server) listDemos(c *gin.Context) {
	u := currentUser(c)
	s.mu.RLock()
	out := make([]record, 0, len(s.demos))
	for _, d := range s.demos {
		if visibleTo(u, d.UserIDs) {
			out = append(out, d.record())
		}
	}
	s.mu.RUnlock()
	s.renderList(c, http.StatusOK, "demos", out)
}

func (s *Server) demoBySlug(c *gin.Context) {
	u := currentUser(c)
	s.mu.RLock()
	var found *demo
	for _, d := range s.demos {
		if d.Slug == c.Param("slug") {
			found = d
			break
		}
	}
	var rec record
	allowed := found != nil && visibleTo(u, found.UserIDs)
	if allowed {
		rec = found.record()
	}
	s.mu.RUnlock()

	switch {
	case found == nil:
		c.Status(http.StatusNotFound)
	case !allowed:
		c.Status(http.StatusForbidden)
	default:
		s.renderOne(c, http.StatusOK, rec)
	}
}

func (s *Server) createDemo(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}
	d := &demo{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        slug.Resolve(req.Slug, title, "demo"),
		HTMLContent: req.HTMLContent,
		UserIDs:     req.UserIDs,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.demos {
		if other.Slug == d.Slug {
			fail(c, http.StatusConflict, "slug already in use")
			return
		}
	}
	s.demos = append(s.demos, d)
	s.renderOne(c, http.StatusCreated, d.record())
}

func (s *Server) deleteDemo(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.demos {
		if d.ID == c.Param("id") {
			s.demos = append(s.demos[:i], s.demos[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	fail(c, http.StatusNotFound, "demo not found")
}
