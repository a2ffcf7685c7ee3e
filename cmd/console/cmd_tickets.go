package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kanellos-me/console/internal/tickets"
)

func (c *cli) tickets(ctx context.Context, args []string) error {
	verb, rest, err := subcommand(args)
	if err != nil {
		return err
	}
	s := c.app.Tickets
	switch verb {
	case "list":
		if err := s.LoadTickets(ctx); err != nil {
			return err
		}
		return c.printTickets(s.State().Items)
	case "mine":
		if err := s.LoadMyTickets(ctx); err != nil {
			return err
		}
		return c.printTickets(s.State().Items)
	case "show":
		fs := newFlags("tickets show")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		t, err := s.GetTicket(ctx, id)
		if err != nil {
			return errors.New(s.Current().Err)
		}
		return c.printTickets([]tickets.Ticket{*t})
	case "submit":
		fs := newFlags("tickets submit")
		var in tickets.NewTicket
		fs.StringVar(&in.Title, "title", "", "short summary")
		fs.StringVar(&in.Description, "description", "", "what happened")
		fs.StringVar(&in.Category, "category", "", "ticket category")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
			return errors.New("tickets submit: -title and -description are required")
		}
		if err := s.Submit(ctx, in); err != nil {
			return err
		}
		return c.done("ticket submitted")
	case "update":
		fs := newFlags("tickets update")
		title := fs.String("title", "", "new title")
		description := fs.String("description", "", "new description")
		category := fs.String("category", "", "new category")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		var upd tickets.Update
		if set(fs, "title") {
			upd.Title = title
		}
		if set(fs, "description") {
			upd.Description = description
		}
		if set(fs, "category") {
			upd.Category = category
		}
		if err := s.Update(ctx, id, upd); err != nil {
			return err
		}
		return c.done("ticket %s updated", id)
	case "resolve", "reopen", "delete":
		fs := newFlags("tickets " + verb)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		action := map[string]func(context.Context, string) error{
			"resolve": s.Resolve,
			"reopen":  s.Reopen,
			"delete":  s.Delete,
		}[verb]
		if err := action(ctx, id); err != nil {
			return err
		}
		return c.done("ticket %s: %s done", id, verb)
	case "replies":
		fs := newFlags("tickets replies")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		if err := s.LoadReplies(ctx, id); err != nil {
			return err
		}
		replies := s.Replies().Items
		return c.render(replies, []string{"AUTHOR", "DATE", "MESSAGE"}, func() [][]string {
			rows := make([][]string, 0, len(replies))
			for _, r := range replies {
				rows = append(rows, []string{r.Author, date(r.CreatedAt), r.Message})
			}
			return rows
		})
	case "reply":
		fs := newFlags("tickets reply")
		message := fs.String("message", "", "reply text")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		if strings.TrimSpace(*message) == "" {
			return errors.New("tickets reply: -message is required")
		}
		if err := s.Reply(ctx, id, *message); err != nil {
			return err
		}
		return c.done("reply added to %s", id)
	default:
		return fmt.Errorf("unknown tickets command: %s", verb)
	}
}

func (c *cli) printTickets(items []tickets.Ticket) error {
	return c.render(items, []string{"ID", "TITLE", "CATEGORY", "RESOLVED", "OWNER", "CREATED"}, func() [][]string {
		rows := make([][]string, 0, len(items))
		for _, t := range items {
			rows = append(rows, []string{t.ID, t.Title, t.Category, yesNo(t.IsResolved), t.UserEmail, date(t.CreatedAt)})
		}
		return rows
	})
}
