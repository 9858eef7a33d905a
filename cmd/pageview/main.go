package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pageflow/pkg/config"
	"pageflow/pkg/pipeline"
	"pageflow/pkg/styled"
)

// renderSource runs the whole pipeline for the file at src.
func renderSource(log *zap.Logger, cfg *config.Config, src string) ([]image.Image, error) {
	root, err := styled.DecodeFile(src)
	if err != nil {
		return nil, err
	}
	p := pipeline.New(log, cfg)
	res, err := p.Paginate(root)
	if err != nil {
		return nil, err
	}
	r, err := p.Renderer()
	if err != nil {
		return nil, err
	}
	return r.RenderAll(res.Document)
}

func show(log *zap.Logger, cfg *config.Config, src string) {
	a := app.New()
	w := a.NewWindow("pageview")
	w.Resize(fyne.NewSize(float32(cfg.Page.Width*cfg.Render.Scale)+40, float32(cfg.Page.Height*cfg.Render.Scale)+80))

	pg := &pager{}
	canvasImg := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	canvasImg.FillMode = canvas.ImageFillContain
	status := widget.NewLabel("Loading " + src + "...")

	var prev, next *widget.Button
	refresh := func() {
		if img := pg.current(); img != nil {
			canvasImg.Image = img
			canvasImg.Refresh()
		}
		status.SetText(pg.status())
		if pg.atStart() {
			prev.Disable()
		} else {
			prev.Enable()
		}
		if pg.atEnd() {
			next.Disable()
		} else {
			next.Enable()
		}
	}
	prev = widget.NewButton("Prev", func() { pg.move(-1); refresh() })
	next = widget.NewButton("Next", func() { pg.move(1); refresh() })

	load := func() {
		status.SetText("Loading " + src + "...")
		go func() {
			pages, err := renderSource(log, cfg, src)
			fyne.Do(func() {
				if err != nil {
					log.Error("Unable to render", zap.String("source", src), zap.Error(err))
					status.SetText("Error: " + err.Error())
					return
				}
				pg.set(pages)
				refresh()
				w.SetTitle(fmt.Sprintf("pageview - %s", src))
			})
		}()
	}
	reload := widget.NewButton("Reload", load)

	// Layout: navigation on top, status at bottom, page fills center
	topBar := container.NewHBox(prev, next, reload)
	w.SetContent(container.NewBorder(topBar, status, nil, nil, canvasImg))

	load()
	w.ShowAndRun()
}

func main() {
	root := &cli.Command{
		Name:      "pageview",
		Usage:     "shows the pages of a styled tree",
		ArgsUsage: "SOURCE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			src := cmd.Args().First()
			if src == "" {
				return errors.New("no SOURCE styled tree specified")
			}
			cfg, err := config.LoadConfiguration(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("unable to prepare configuration: %w", err)
			}
			log, err := cfg.Logging.Prepare()
			if err != nil {
				return fmt.Errorf("unable to prepare logs: %w", err)
			}
			defer func() { _ = log.Sync() }()

			show(log, cfg, src)
			return nil
		},
	}
	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		os.Exit(1)
	}
}
