package tickets

import (
	"strings"
	"time"

	"github.com/kanellos-me/console/internal/normalize"
)

var (
	listKeys  = []string{"tickets", "data", "items", "results"}
	replyKeys = []string{"replies", "data", "items", "results"}
)

// Ticket is a support ticket.
type Ticket struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Status      string    `json:"status,omitempty"`
	IsResolved  bool      `json:"isResolved"`
	UserEmail   string    `json:"userEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Reply is one message in a ticket's thread.
type Reply struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTicket is the submit payload.
type NewTicket struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// Update edits a ticket; nil fields are left alone.
type Update struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

func normalizeTicket(r normalize.Record) Ticket {
	status := r.String("status")
	return Ticket{
		ID:          r.String("id", "ticketId"),
		Title:       r.String("title", "subject"),
		Description: r.String("description", "body"),
		Category:    r.String("category"),
		Status:      status,
		IsResolved:  r.Bool("isResolved", "resolved") || strings.EqualFold(status, "resolved"),
		UserEmail:   r.String("userEmail", "email"),
		CreatedAt:   r.Time("createdAt"),
		UpdatedAt:   r.Time("updatedAt"),
	}
}

func normalizeReply(r normalize.Record) Reply {
	return Reply{
		ID:        r.String("id", "replyId"),
		TicketID:  r.String("ticketId"),
		Author:    r.String("author", "userEmail", "email"),
		Message:   r.String("message", "body", "content"),
		CreatedAt: r.Time("createdAt"),
	}
}
