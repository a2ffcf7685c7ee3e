package routeguard

import "net/url"

// Client-side route surface.
const (
	Root             = "/"
	ProjectPhotoLock = "/projects/photolock"
	Admin            = "/admin"
	Dashboard        = "/dashboard"
	Profile          = "/profile"
	Tickets          = "/tickets"
	TicketNew        = "/tickets/new"
	Showcase         = "/showcase"
	Demos            = "/demos"
	ForgotPassword   = "/forgot-password"
	ResetPassword    = "/reset-password"
)

// TicketDetail returns the route for one ticket.
func TicketDetail(id string) string {
	return Tickets + "/" + url.PathEscape(id)
}

// ShowcaseDetail returns the route for a showcase item.
func ShowcaseDetail(slug string) string {
	return Showcase + "/" + url.PathEscape(slug)
}

// DemoDetail returns the route for a demo.
func DemoDetail(slug string) string {
	return Demos + "/" + url.PathEscape(slug)
}
