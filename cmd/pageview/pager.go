package main

import (
	"fmt"
	"image"
	"sync"
)

// pager tracks which rendered page is shown. Reloads replace the pages and
// keep the position when the new document is long enough.
type pager struct {
	mu    sync.Mutex
	pages []image.Image
	index int
}

func (p *pager) set(pages []image.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = pages
	if p.index >= len(pages) {
		p.index = max(len(pages)-1, 0)
	}
}

func (p *pager) move(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = min(max(p.index+delta, 0), max(len(p.pages)-1, 0))
}

func (p *pager) current() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pages) == 0 {
		return nil
	}
	return p.pages[p.index]
}

func (p *pager) status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pages) == 0 {
		return "no pages"
	}
	return fmt.Sprintf("Page %d of %d", p.index+1, len(p.pages))
}

func (p *pager) atStart() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index == 0
}

func (p *pager) atEnd() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index >= len(p.pages)-1
}
