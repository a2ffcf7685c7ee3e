package main

import (
	"context"
	"errors"
	"flag"
	"strconv"

	"github.com/kanellos-me/console/internal/auth"
)

func (c *cli) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login: -email and -password are required")
	}
	if err := c.app.Session.Login(ctx, *email, *password); err != nil {
		return err
	}
	return c.done("signed in as %s (%s)", c.app.Session.Email(), c.app.Session.Role())
}

func (c *cli) logout(ctx context.Context) error {
	c.app.Session.Logout(ctx)
	return c.done("signed out")
}

func (c *cli) me(ctx context.Context) error {
	u := c.app.Session.EnsureResolved(ctx)
	if u == nil {
		return errors.New("not signed in")
	}
	return c.render(u, []string{"ID", "EMAIL", "USERNAME", "ROLE"}, func() [][]string {
		return [][]string{{u.ID, u.Email, u.Username, u.Role()}}
	})
}

// status prints the session together with the client's call metrics.
func (c *cli) status(ctx context.Context) error {
	u := c.app.Session.EnsureResolved(ctx)
	m := c.app.Client.Metrics().Snapshot()
	v := map[string]any{
		"backend":       c.app.Client.BaseURL(),
		"authenticated": u != nil,
		"email":         c.app.Session.Email(),
		"role":          c.app.Session.Role(),
		"calls":         m.Calls,
		"errorRate":     m.ErrorRate(),
		"avgLatency":    m.AverageLatency().String(),
	}
	return c.render(v, []string{"BACKEND", "SIGNED IN", "EMAIL", "ROLE", "CALLS"}, func() [][]string {
		return [][]string{{c.app.Client.BaseURL(), yesNo(u != nil), c.app.Session.Email(), c.app.Session.Role(), strconv.FormatInt(m.Calls, 10)}}
	})
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := newFlags("register")
	var reg auth.Registration
	fs.StringVar(&reg.Email, "email", "", "account email")
	fs.StringVar(&reg.Password, "password", "", "account password")
	fs.StringVar(&reg.Username, "username", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if reg.Email == "" || reg.Password == "" {
		return errors.New("register: -email and -password are required")
	}
	if err := c.app.Session.Register(ctx, reg); err != nil {
		return err
	}
	return c.done("registered %s, sign in to continue", reg.Email)
}

func (c *cli) profile(ctx context.Context, args []string) error {
	fs := newFlags("profile")
	username := fs.String("username", "", "new username")
	email := fs.String("email", "", "new email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var upd auth.ProfileUpdate
	if set(fs, "username") {
		upd.Username = username
	}
	if set(fs, "email") {
		upd.Email = email
	}
	if upd.Username == nil && upd.Email == nil {
		return c.me(ctx)
	}
	if err := c.app.Session.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	return c.me(ctx)
}

func (c *cli) forgotPassword(ctx context.Context, args []string) error {
	fs := newFlags("forgot-password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	email, err := needArg(fs, "email")
	if err != nil {
		return err
	}
	if err := c.app.Session.ForgotPassword(ctx, email); err != nil {
		return err
	}
	return c.done("if %s has an account, a reset link is on its way", email)
}

func (c *cli) resetPassword(ctx context.Context, args []string) error {
	fs := newFlags("reset-password")
	token := fs.String("token", "", "token from the reset email")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" || *password == "" {
		return errors.New("reset-password: -token and -password are required")
	}
	if err := c.app.Session.ResetPassword(ctx, *token, *password); err != nil {
		return err
	}
	return c.done("password changed")
}

// route runs the navigation guard for a path without loading anything.
func (c *cli) route(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("route: expected <path>")
	}
	d := c.app.Navigate(ctx, args[0])
	return c.render(d, []string{"PATH", "ACCESS", "ALLOWED", "LOCATION"}, func() [][]string {
		return [][]string{{args[0], d.Access.String(), yesNo(d.Allowed), c.app.Navigator.Location()}}
	})
}

// set reports whether the flag was given on the command line, so empty
// values can still be sent.
func set(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
