package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kanellos-me/console/internal/analytics"
	"github.com/kanellos-me/console/internal/users"
)

func (c *cli) users(ctx context.Context, args []string) error {
	verb, rest, err := subcommand(args)
	if err != nil {
		return err
	}
	s := c.app.Users
	switch verb {
	case "list":
		if err := s.LoadAllUsers(ctx); err != nil {
			return err
		}
		return c.printUsers(s.State().Items)
	case "show":
		fs := newFlags("users show")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		u, err := s.GetUser(ctx, id)
		if err != nil {
			return errors.New(s.Current().Err)
		}
		return c.printUsers([]users.AppUser{*u})
	case "update":
		fs := newFlags("users update")
		username := fs.String("username", "", "new username")
		email := fs.String("email", "", "new email")
		admin := fs.Bool("admin", false, "grant or revoke admin")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		var upd users.Update
		if set(fs, "username") {
			upd.Username = username
		}
		if set(fs, "email") {
			upd.Email = email
		}
		if set(fs, "admin") {
			upd.IsAdmin = admin
		}
		if err := s.UpdateUser(ctx, id, upd); err != nil {
			return err
		}
		return c.done("user %s updated", id)
	default:
		return fmt.Errorf("unknown users command: %s", verb)
	}
}

func (c *cli) printUsers(items []users.AppUser) error {
	return c.render(items, []string{"ID", "EMAIL", "USERNAME", "ADMIN", "CREATED"}, func() [][]string {
		rows := make([][]string, 0, len(items))
		for _, u := range items {
			rows = append(rows, []string{u.ID, u.Email, u.Username, yesNo(u.IsAdmin), date(u.CreatedAt)})
		}
		return rows
	})
}

func (c *cli) analytics(ctx context.Context, args []string) error {
	verb, rest, err := subcommand(args)
	if err != nil {
		return err
	}
	fs := newFlags("analytics " + verb)
	var q analytics.Query
	fs.StringVar(&q.Since, "since", "", "window start (RFC 3339, date, or negative minutes)")
	fs.StringVar(&q.Until, "until", "", "window end")
	fs.StringVar(&q.TimeDelta, "delta", "", "bucket size, e.g. hour or day")
	spec := fs.String("every", analytics.DefaultRefreshSpec, "refresh schedule for watch (cron with seconds)")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	s := c.app.Analytics

	switch verb {
	case "dashboard":
		if err := s.FetchDashboard(ctx, q); err != nil {
			return errors.New(s.State().Err)
		}
		return c.printDashboard()
	case "watch":
		if err := s.FetchDashboard(ctx, q); err != nil {
			return errors.New(s.State().Err)
		}
		if err := c.printDashboard(); err != nil {
			return err
		}
		r := analytics.NewRefresher(s, func() analytics.Query { return q })
		if err := r.Start(ctx, *spec); err != nil {
			return err
		}
		<-ctx.Done()
		<-r.Stop().Done()
		return nil
	default:
		return fmt.Errorf("unknown analytics command: %s", verb)
	}
}

func (c *cli) printDashboard() error {
	s := c.app.Analytics
	if c.json {
		return c.printJSON(map[string]any{
			"totals": map[string]int64{
				"requests":  s.TotalRequests(),
				"bandwidth": s.TotalBandwidth(),
				"threats":   s.TotalThreats(),
				"pageviews": s.TotalPageviews(),
				"uniques":   s.TotalUniques(),
			},
			"chart": s.ChartData(),
		})
	}
	totals := [][]string{{
		strconv.FormatInt(s.TotalRequests(), 10),
		strconv.FormatInt(s.TotalBandwidth(), 10),
		strconv.FormatInt(s.TotalThreats(), 10),
		strconv.FormatInt(s.TotalPageviews(), 10),
		strconv.FormatInt(s.TotalUniques(), 10),
	}}
	if err := c.table([]string{"REQUESTS", "BANDWIDTH", "THREATS", "PAGEVIEWS", "UNIQUES"}, totals); err != nil {
		return err
	}
	fmt.Fprintln(c.out)
	chart := s.ChartData()
	rows := make([][]string, 0, len(chart))
	for _, p := range chart {
		rows = append(rows, []string{p.Date, strconv.FormatInt(p.Requests, 10), strconv.FormatInt(p.Bandwidth, 10)})
	}
	return c.table([]string{"DATE", "REQUESTS", "BANDWIDTH"}, rows)
}
