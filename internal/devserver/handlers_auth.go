package devserver

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kanellos-me/console/internal/logging"
)

func (s *Server) registerAuth(g *gin.RouterGroup) {
	g.POST("/login", s.login)
	g.POST("/logout", s.logout)
	g.POST("/register", s.register)
	g.POST("/forgot-password", s.forgotPassword)
	g.POST("/reset-password", s.resetPassword)
	g.GET("/me", requireUser(), s.me)
	g.PUT("/me", requireUser(), s.updateMe)

	admin := g.Group("/users", requireAdmin())
	admin.GET("", s.listUsers)
	admin.GET("/:id", s.getUser)
	admin.PUT("/:id", s.updateUser)
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !s.allowLogin(email) {
		fail(c, http.StatusTooManyRequests, "too many login attempts, try again shortly")
		return
	}

	s.mu.Lock()
	u := s.findByEmail(email)
	if u == nil || u.Password != req.Password {
		s.mu.Unlock()
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	token := uuid.NewString()
	s.sessions[token] = u.ID
	rec := u.meRecord()
	s.mu.Unlock()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(sessionTTL/time.Second), "/", "", false, true)
	s.renderOne(c, http.StatusOK, record{"user": rec})
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) me(c *gin.Context) {
	s.renderOne(c, http.StatusOK, currentUser(c).meRecord())
}

func (s *Server) updateMe(c *gin.Context) {
	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[currentUser(c).ID]
	if u == nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if other := s.findByEmail(email); other != nil && other.ID != u.ID {
			fail(c, http.StatusConflict, "email already exists")
			return
		}
		u.Email = email
	}
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	u.UpdatedAt = time.Now().UTC()
	s.renderOne(c, http.StatusOK, u.meRecord())
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(email) != nil {
		fail(c, http.StatusConflict, "email already exists")
		return
	}
	now := time.Now().UTC()
	u := &account{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  strings.TrimSpace(req.Username),
		Password:  req.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = u
	s.renderOne(c, http.StatusCreated, u.meRecord())
}

// forgotPassword always answers 202 so the endpoint does not reveal which
// emails exist.
func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	if u := s.findByEmail(strings.ToLower(strings.TrimSpace(req.Email))); u != nil {
		token := uuid.NewString()
		s.resetTokens[token] = u.ID
		logging.New(c.Request.Context()).LogInfof("forgot_password", "reset token for %s: %s", u.Email, token)
	}
	s.mu.Unlock()
	c.JSON(http.StatusAccepted, gin.H{"message": "If the address exists, a reset link has been sent."})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		fail(c, http.StatusBadRequest, "token and password are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.resetTokens[req.Token]
	u := s.users[id]
	if !ok || u == nil {
		fail(c, http.StatusBadRequest, "invalid or expired reset token")
		return
	}
	delete(s.resetTokens, req.Token)
	u.Password = req.Password
	u.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.RLock()
	all := make([]*account, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) || (all[i].CreatedAt.Equal(all[j].CreatedAt) && all[i].Email < all[j].Email) })
	out := make([]record, 0, len(all))
	for _, u := range all {
		out = append(out, u.record())
	}
	s.mu.RUnlock()
	s.renderList(c, http.StatusOK, "users", out)
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.RLock()
	u := s.users[c.Param("id")]
	var rec record
	if u != nil {
		rec = u.record()
	}
	s.mu.RUnlock()
	if rec == nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	s.renderOne(c, http.StatusOK, rec)
}

func (s *Server) updateUser(c *gin.Context) {
	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		IsAdmin  *bool   `json:"isAdmin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[c.Param("id")]
	if u == nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	u.UpdatedAt = time.Now().UTC()
	s.renderOne(c, http.StatusOK, u.record())
}

// findByEmail expects s.mu to be held.
func (s *Server) findByEmail(email string) *account {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}
