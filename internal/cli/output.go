package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo/internal/service"
)

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) line(s string) {
	p.linef("%s", s)
}

// table writes tab-aligned columns. fill calls row once per data row.
func (p *printer) table(header []string, fill func(row func(...string))) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	write := func(cols ...string) {
		if p.err == nil {
			_, p.err = fmt.Fprintln(tw, strings.Join(cols, "\t"))
		}
	}
	write(header...)
	fill(write)
	if err := tw.Flush(); err != nil && p.err == nil {
		p.err = err
	}
}

// print writes v as indented JSON when --json is set, otherwise runs text.
func (o *rootOptions) print(cmd *cobra.Command, v any, text func(p *printer)) error {
	out := cmd.OutOrStdout()
	if o.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	p := &printer{w: out}
	text(p)
	return p.err
}

func printTodo(p *printer, todo *service.TodoResponse) {
	p.linef("ID:        %d", todo.ID)
	p.linef("Title:     %s", todo.Title)
	p.linef("Notes:     %s", todo.Notes)
	p.linef("Assigned:  %s", todo.Assigned)
	p.linef("Completed: %s", yesNo(todo.Completed))
	p.linef("Created:   %s", todo.CreatedAt)
	p.linef("Updated:   %s", todo.UpdatedAt)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
