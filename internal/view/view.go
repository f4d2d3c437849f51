package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Snapshot is a read-only copy of a rendered page together with the location it was taken at
type Snapshot struct {
	Doc      *goquery.Document
	Location string
}

// Source yields a snapshot of the current view on demand
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Parse builds a snapshot from rendered HTML
func Parse(r io.Reader, location string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Snapshot{Doc: doc, Location: location}, nil
}

// ParseString is Parse for an HTML string
func ParseString(html, location string) (*Snapshot, error) {
	return Parse(strings.NewReader(html), location)
}

// FileSource reads a saved page from disk on every call, so edits to the file are picked up
type FileSource struct {
	Path     string
	Location string
}

// Snapshot implements Source
func (s FileSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return Parse(f, s.Location)
}
