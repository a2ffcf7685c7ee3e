package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
)

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table prints rows under header, tab aligned.
func (c *cli) table(header []string, rows [][]string) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	return w.Flush()
}

// render prints v as JSON, or as a table built by rows.
func (c *cli) render(v any, header []string, rows func() [][]string) error {
	if c.json {
		return c.printJSON(v)
	}
	return c.table(header, rows())
}

func (c *cli) done(format string, args ...any) error {
	if c.json {
		return c.printJSON(map[string]string{"result": fmt.Sprintf(format, args...)})
	}
	_, err := fmt.Fprintf(c.out, format+"\n", args...)
	return err
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// csv splits a comma separated flag value, dropping blanks.
func csv(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
