package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hclgraph/internal/ctxlog"
	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/objpath"
	"github.com/specialistvlad/hclgraph/internal/render"
	"github.com/specialistvlad/hclgraph/internal/watch"
)

// Run builds and prints the document. In watch mode it keeps rebuilding on
// every change until ctx is done; failed rebuilds are logged, not returned.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if !a.config.Watch {
		return a.buildAndRender(ctx)
	}

	if err := a.buildAndRender(ctx); err != nil {
		a.logger.Error("Build failed.", "error", err)
	}
	err := watch.Run(ctx, a.config.DocPath, 0, func(ctx context.Context, changed []string) error {
		a.logger.Info("Rebuilding.", "changed", changed)
		if err := a.buildAndRender(ctx); err != nil {
			a.logger.Error("Build failed.", "error", err)
		}
		return nil
	})
	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) buildAndRender(ctx context.Context) error {
	res, err := a.Build(ctx)
	if err != nil {
		return err
	}

	out := res.Root
	if a.config.Select != "" {
		addr, err := objpath.Parse(a.config.Select)
		if err != nil {
			return fmt.Errorf("invalid select path: %w", err)
		}
		if out, err = objmodel.Find(out, addr); err != nil {
			return fmt.Errorf("failed to select %s: %w", a.config.Select, err)
		}
	}

	format, err := render.ParseFormat(a.config.Output)
	if err != nil {
		return err
	}
	return render.Write(a.outW, format, out)
}
