package devserver

import (
	"slices"
	"time"
)

type account struct {
	ID        string
	Email     string
	Username  string
	Password  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *account) record() record {
	return record{
		"id":        a.ID,
		"email":     a.Email,
		"username":  a.Username,
		"isAdmin":   a.IsAdmin,
		"createdAt": a.CreatedAt.Format(time.RFC3339),
		"updatedAt": a.UpdatedAt.Format(time.RFC3339),
	}
}

// meRecord is the "who am I" payload, which names the id userId.
func (a *account) meRecord() record {
	return record{
		"userId":   a.ID,
		"email":    a.Email,
		"username": a.Username,
		"isAdmin":  a.IsAdmin,
	}
}

type ticket struct {
	ID          string
	Title       string
	Description string
	Category    string
	Resolved    bool
	OwnerID     string
	UserEmail   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *ticket) record() record {
	status := "open"
	if t.Resolved {
		status = "resolved"
	}
	return record{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"category":    t.Category,
		"status":      status,
		"isResolved":  t.Resolved,
		"userEmail":   t.UserEmail,
		"createdAt":   t.CreatedAt.Format(time.RFC3339),
		"updatedAt":   t.UpdatedAt.Format(time.RFC3339),
	}
}

type reply struct {
	ID        string
	TicketID  string
	Author    string
	Message   string
	CreatedAt time.Time
}

func (r *reply) record() record {
	return record{
		"id":        r.ID,
		"ticketId":  r.TicketID,
		"author":    r.Author,
		"message":   r.Message,
		"createdAt": r.CreatedAt.Format(time.RFC3339),
	}
}

type showcaseItem struct {
	ID          string
	Type        string
	Title       string
	Slug        string
	HTMLContent string
	ImageURLs   []string
	UserIDs     []string
	CreatedAt   time.Time
}

func (it *showcaseItem) record() record {
	r := record{
		"id":        it.ID,
		"type":      it.Type,
		"title":     it.Title,
		"slug":      it.Slug,
		"userIds":   nonNil(it.UserIDs),
		"createdAt": it.CreatedAt.Format(time.RFC3339),
	}
	if it.Type == "gallery" {
		r["imageUrls"] = nonNil(it.ImageURLs)
	} else {
		r["htmlContent"] = it.HTMLContent
	}
	return r
}

type demo struct {
	ID          string
	Title       string
	Slug        string
	HTMLContent string
	UserIDs     []string
	CreatedAt   time.Time
}

func (d *demo) record() record {
	return record{
		"id":          d.ID,
		"title":       d.Title,
		"slug":        d.Slug,
		"htmlContent": d.HTMLContent,
		"userIds":     nonNil(d.UserIDs),
		"createdAt":   d.CreatedAt.Format(time.RFC3339),
	}
}

type upload struct {
	ContentType string
	Data        []byte
}

// visibleTo reports whether u may see content shared with ids. Admins see
// everything; content shared with nobody is visible to every signed-in user.
func visibleTo(u *account, ids []string) bool {
	return u.IsAdmin || len(ids) == 0 || slices.Contains(ids, u.ID)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
