package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) registerTickets(g *gin.RouterGroup) {
	g.GET("/get", s.listTickets)
	g.GET("/get/:id", s.getTicket)
	if !s.opts.DisableMyTickets {
		g.GET("/my", s.myTickets)
	}
	g.POST("/submit", s.submitTicket)
	g.PUT("/update/:id", s.updateTicket)
	g.PUT("/resolve/:id", s.setResolved(true))
	g.PUT("/reopen/:id", s.setResolved(false))
	g.DELETE("/delete/:id", s.deleteTicket)
	g.GET("/:id/replies", s.listReplies)
	g.POST("/:id/reply", s.addReply)
}

// listTickets is the general listing: everything for admins, own tickets
// otherwise.
func (s *Server) listTickets(c *gin.Context) {
	u := currentUser(c)
	s.renderList(c, http.StatusOK, "tickets", s.ticketRecords(func(t *ticket) bool {
		return u.IsAdmin || t.OwnerID == u.ID
	}))
}

func (s *Server) myTickets(c *gin.Context) {
	u := currentUser(c)
	s.renderList(c, http.StatusOK, "tickets", s.ticketRecords(func(t *ticket) bool {
		return t.OwnerID == u.ID
	}))
}

func (s *Server) ticketRecords(keep func(*ticket) bool) []record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]record, 0, len(s.tickets))
	for _, t := range s.tickets {
		if keep(t) {
			out = append(out, t.record())
		}
	}
	return out
}

func (s *Server) getTicket(c *gin.Context) {
	s.mu.RLock()
	t, status := s.ownedTicket(c)
	var rec record
	if t != nil {
		rec = t.record()
	}
	s.mu.RUnlock()
	if rec == nil {
		c.Status(status)
		return
	}
	s.renderOne(c, http.StatusOK, rec)
}

func (s *Server) submitTicket(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}
	u := currentUser(c)
	now := time.Now().UTC()
	t := &ticket{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		OwnerID:     u.ID,
		UserEmail:   u.Email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.tickets = append(s.tickets, t)
	rec := t.record()
	s.mu.Unlock()
	s.renderOne(c, http.StatusCreated, rec)
}

func (s *Server) updateTicket(c *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, status := s.ownedTicket(c)
	if t == nil {
		fail(c, status, http.StatusText(status))
		return
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	t.UpdatedAt = time.Now().UTC()
	s.renderOne(c, http.StatusOK, t.record())
}

func (s *Server) setResolved(resolved bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		t, status := s.ownedTicket(c)
		if t == nil {
			fail(c, status, http.StatusText(status))
			return
		}
		t.Resolved = resolved
		t.UpdatedAt = time.Now().UTC()
		s.renderOne(c, http.StatusOK, t.record())
	}
}

func (s *Server) deleteTicket(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, status := s.ownedTicket(c)
	if t == nil {
		fail(c, status, http.StatusText(status))
		return
	}
	for i, other := range s.tickets {
		if other == t {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			break
		}
	}
	delete(s.replies, t.ID)
	c.Status(http.StatusNoContent)
}

func (s *Server) listReplies(c *gin.Context) {
	s.mu.RLock()
	t, status := s.ownedTicket(c)
	var out []record
	if t != nil {
		out = make([]record, 0, len(s.replies[t.ID]))
		for _, r := range s.replies[t.ID] {
			out = append(out, r.record())
		}
	}
	s.mu.RUnlock()
	if t == nil {
		fail(c, status, http.StatusText(status))
		return
	}
	s.renderList(c, http.StatusOK, "replies", out)
}

func (s *Server) addReply(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, "message is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, status := s.ownedTicket(c)
	if t == nil {
		fail(c, status, http.StatusText(status))
		return
	}
	r := &reply{
		ID:        uuid.NewString(),
		TicketID:  t.ID,
		Author:    currentUser(c).Email,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now().UTC(),
	}
	s.replies[t.ID] = append(s.replies[t.ID], r)
	s.renderOne(c, http.StatusCreated, r.record())
}

// ownedTicket finds the :id ticket if the caller may act on it. It expects
// s.mu to be held and returns the failure status otherwise.
func (s *Server) ownedTicket(c *gin.Context) (*ticket, int) {
	u := currentUser(c)
	id := c.Param("id")
	for _, t := range s.tickets {
		if t.ID != id {
			continue
		}
		if !u.IsAdmin && t.OwnerID != u.ID {
			return nil, http.StatusForbidden
		}
		return t, http.StatusOK
	}
	return nil, http.StatusNotFound
}
