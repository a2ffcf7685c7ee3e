package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kanellos-me/console/internal/demos"
	"github.com/kanellos-me/console/internal/showcase"
)

func (c *cli) showcase(ctx context.Context, args []string) error {
	verb, rest, err := subcommand(args)
	if err != nil {
		return err
	}
	s := c.app.Showcase
	switch verb {
	case "list":
		if err := s.LoadItems(ctx); err != nil {
			return err
		}
		return c.printItems(s.State().Items)
	case "show":
		fs := newFlags("showcase show")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		slug, err := needArg(fs, "slug")
		if err != nil {
			return err
		}
		it, err := s.GetItemBySlug(ctx, slug)
		if err != nil {
			return errors.New(s.Current().Err)
		}
		return c.printItems([]showcase.Item{*it})
	case "create":
		fs := newFlags("showcase create")
		kind := fs.String("type", "site", "site or gallery")
		title := fs.String("title", "", "item title")
		slug := fs.String("slug", "", "url slug, derived from the title when blank")
		htmlFile := fs.String("html", "", "file holding the site's HTML")
		images := fs.String("images", "", "comma separated image URLs")
		usersFlag := fs.String("users", "", "comma separated user ids allowed to view; blank means everyone")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if strings.TrimSpace(*title) == "" {
			return errors.New("showcase create: -title is required")
		}
		in := showcase.NewItem{
			Type:      showcase.ParseType(*kind),
			Title:     *title,
			Slug:      *slug,
			ImageURLs: csv(*images),
			UserIDs:   csv(*usersFlag),
		}
		if *htmlFile != "" {
			b, err := os.ReadFile(*htmlFile)
			if err != nil {
				return fmt.Errorf("read html: %w", err)
			}
			in.HTMLContent = string(b)
		}
		if err := s.CreateItem(ctx, in); err != nil {
			return err
		}
		return c.done("showcase item %q created", *title)
	case "delete":
		fs := newFlags("showcase delete")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		if err := s.DeleteItem(ctx, id); err != nil {
			return err
		}
		return c.done("showcase item %s deleted", id)
	case "upload":
		fs := newFlags("showcase upload")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		path, err := needArg(fs, "file")
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		url, err := s.UploadImage(ctx, filepath.Base(path), f)
		if err != nil {
			return err
		}
		if c.json {
			return c.printJSON(map[string]string{"url": url})
		}
		_, err = fmt.Fprintln(c.out, url)
		return err
	default:
		return fmt.Errorf("unknown showcase command: %s", verb)
	}
}

func (c *cli) printItems(items []showcase.Item) error {
	return c.render(items, []string{"ID", "TYPE", "TITLE", "SLUG", "IMAGES", "CREATED"}, func() [][]string {
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{it.ID, string(it.Type), it.Title, it.Slug, fmt.Sprint(len(it.ImageURLs)), date(it.CreatedAt)})
		}
		return rows
	})
}

func (c *cli) demos(ctx context.Context, args []string) error {
	verb, rest, err := subcommand(args)
	if err != nil {
		return err
	}
	s := c.app.Demos
	switch verb {
	case "list":
		if err := s.LoadDemos(ctx); err != nil {
			return err
		}
		return c.printDemos(s.State().Items)
	case "show":
		fs := newFlags("demos show")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		slug, err := needArg(fs, "slug")
		if err != nil {
			return err
		}
		d, err := s.GetDemoBySlug(ctx, slug)
		if err != nil {
			return errors.New(s.Current().Err)
		}
		return c.printDemos([]demos.Demo{*d})
	case "create":
		fs := newFlags("demos create")
		var in demos.NewDemo
		fs.StringVar(&in.Title, "title", "", "demo title")
		fs.StringVar(&in.Slug, "slug", "", "url slug, derived from the title when blank")
		htmlFile := fs.String("html", "", "file holding the demo's HTML")
		usersFlag := fs.String("users", "", "comma separated user ids allowed to view")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if strings.TrimSpace(in.Title) == "" {
			return errors.New("demos create: -title is required")
		}
		in.UserIDs = csv(*usersFlag)
		if *htmlFile != "" {
			b, err := os.ReadFile(*htmlFile)
			if err != nil {
				return fmt.Errorf("read html: %w", err)
			}
			in.HTMLContent = string(b)
		}
		if err := s.CreateDemo(ctx, in); err != nil {
			return err
		}
		return c.done("demo %q created", in.Title)
	case "delete":
		fs := newFlags("demos delete")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := needArg(fs, "id")
		if err != nil {
			return err
		}
		if err := s.DeleteDemo(ctx, id); err != nil {
			return err
		}
		return c.done("demo %s deleted", id)
	default:
		return fmt.Errorf("unknown demos command: %s", verb)
	}
}

func (c *cli) printDemos(items []demos.Demo) error {
	return c.render(items, []string{"ID", "TITLE", "SLUG", "VIEWERS", "CREATED"}, func() [][]string {
		rows := make([][]string, 0, len(items))
		for _, d := range items {
			viewers := "everyone"
			if len(d.UserIDs) > 0 {
				viewers = strings.Join(d.UserIDs, ",")
			}
			rows = append(rows, []string{d.ID, d.Title, d.Slug, viewers, date(d.CreatedAt)})
		}
		return rows
	})
}
