// Package cli implements the propmap terminal reports. Every command loads
// the property and location-score collections once, derives its view with the
// analytics packages and prints Markdown.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/gta-invest/propertymap/internal/platform/propertyapi"
	"github.com/gta-invest/propertymap/pkg/model"
)

// Source is the read side of the property API. *propertyapi.Client
// implements it with fixture fallback.
type Source interface {
	Load(ctx context.Context) (propertyapi.Dataset, error)
	Property(ctx context.Context, id int64) (model.Property, error)
	PropertiesInBounds(ctx context.Context, b model.Bounds) ([]model.Property, error)
	PropertiesByMetric(ctx context.Context, metric string, threshold float64) ([]model.Property, error)
}

// Env is what every command shares.
type Env struct {
	Source Source
	Out    io.Writer
	Err    io.Writer

	// Plain prints raw Markdown instead of rendering it for the terminal.
	Plain    bool
	Currency string
	Now      func() time.Time
}

// Commands returns every report command bound to env.
func Commands(env *Env) []subcommands.Command {
	return []subcommands.Command{
		&dashboardCmd{env: env},
		&citiesCmd{env: env},
		&regionsCmd{env: env},
		&financialsCmd{env: env},
		&heatmapCmd{env: env},
		&searchCmd{env: env},
		&screenCmd{env: env},
	}
}

func (e *Env) load(ctx context.Context) (propertyapi.Dataset, bool) {
	ds, err := e.Source.Load(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error loading data: %v\n", err)
		return propertyapi.Dataset{}, false
	}
	if ds.FromFixture {
		fmt.Fprintln(e.Err, "API unreachable, showing bundled sample data")
	}
	return ds, true
}

func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) printMarkdown(doc string) {
	if e.Plain {
		fmt.Fprint(e.Out, doc)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(e.Out, doc)
		return
	}
	out, err := r.Render(doc)
	if err != nil {
		fmt.Fprint(e.Out, doc)
		return
	}
	fmt.Fprint(e.Out, out)
}
