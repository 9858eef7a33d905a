package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pageflow/pkg/config"
	"pageflow/pkg/layout"
	"pageflow/pkg/paginate"
	"pageflow/pkg/pipeline"
	"pageflow/pkg/render"
	"pageflow/pkg/styled"
)

func loadSource(cmd *cli.Command) (*styled.Node, error) {
	src := cmd.Args().First()
	if src == "" {
		return nil, errors.New("no SOURCE styled tree specified")
	}
	return styled.DecodeFile(src)
}

func runLayout(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	root, err := loadSource(cmd)
	if err != nil {
		return err
	}
	res, err := pipeline.New(env.Log, env.Cfg).Layout(root)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	switch r := res.(type) {
	case layout.Disabled:
		fmt.Fprintln(out, "disabled: enable layout.new_layout in the configuration")
	case layout.Fallback:
		fmt.Fprintf(out, "fallback: %s (root kind %q)\n", r.Reason, r.Kind)
	case layout.Success:
		fmt.Fprint(out, r.Root().Dump())
		writeEvents(out, r.Events)
		if cmd.Bool("records") {
			if !env.Cfg.Layout.Diagnostics {
				env.Log.Warn("Diagnostics are disabled, no records to print")
			}
			writeRecords(out, r.Records)
		}
	}
	return nil
}

func writeEvents(out io.Writer, events []layout.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case layout.EventFallback:
			fmt.Fprintf(out, "fallback %s: %s -> %s (%s)\n", ev.Path, ev.From, ev.To, ev.Reason)
		case layout.EventDropped:
			fmt.Fprintf(out, "dropped %s: %s (%s)\n", ev.Path, ev.From, ev.Reason)
		}
	}
}

func writeRecords(out io.Writer, records []layout.Record) {
	for _, r := range records {
		var meta []string
		for _, k := range slices.Sorted(maps.Keys(r.Metadata)) {
			meta = append(meta, k+"="+r.Metadata[k])
		}
		fmt.Fprintf(out, "record %s context=%s size=%vx%v constraints=%s %s\n",
			r.Path, r.Context, r.Width, r.Height, r.Constraints, strings.Join(meta, " "))
	}
}

func runPaginate(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	root, err := loadSource(cmd)
	if err != nil {
		return err
	}
	p := pipeline.New(env.Log, env.Cfg)
	res, err := p.Paginate(root)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprint(out, res.Document.Dump())
	writeEvents(out, res.Layout.Events)

	if dir := cmd.String("png"); dir != "" {
		r, err := p.Renderer()
		if err != nil {
			return err
		}
		if _, err := r.SavePNG(res.Document, dir); err != nil {
			return err
		}
	}
	env.Log.Info("Paginated", zap.String("source", cmd.Args().First()), zap.Int("pages", len(res.Document.Pages)))
	return nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	dest := cmd.Args().Get(1)
	if dest == "" {
		return errors.New("no DESTINATION directory specified")
	}
	root, err := loadSource(cmd)
	if err != nil {
		return err
	}
	p := pipeline.New(env.Log, env.Cfg)
	res, err := p.Paginate(root)
	if err != nil {
		return err
	}
	r, err := p.Renderer()
	if err != nil {
		return err
	}
	if cmd.Bool("compare") {
		return compareReferences(cmd, r, res.Document, dest)
	}
	paths, err := r.SavePNG(res.Document, dest)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintln(cmd.Root().Writer, path)
	}
	return nil
}

// compareReferences checks rendered pages against the PNGs in dir instead of
// writing them.
func compareReferences(cmd *cli.Command, r *render.Renderer, doc *paginate.Document, dir string) error {
	opts := render.DefaultCompareOptions()
	opts.Tolerance = int(cmd.Int("tolerance"))
	opts.DiffImagePath = cmd.String("diff")
	mismatches, err := r.CompareDir(doc, dir, opts)
	if err != nil {
		return err
	}
	out := cmd.Root().Writer
	for _, m := range mismatches {
		fmt.Fprintf(out, "page %d differs: %d of %d pixels, max difference %d\n",
			m.Page, m.Result.DifferentPixels, m.Result.TotalPixels, m.Result.MaxDifference)
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%d of %d pages differ from references in %s", len(mismatches), len(doc.Pages), dir)
	}
	fmt.Fprintf(out, "all %d pages match\n", len(doc.Pages))
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := cmd.Root().Writer
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}

	if cmd.Bool("default") {
		state = "default"
		data = config.Prepare()
	} else {
		state = "actual"
		if data, err = config.Dump(env.Cfg); err != nil {
			return fmt.Errorf("unable to get configuration: %w", err)
		}
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Debug("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
