package main

import (
	"context"
	"fmt"

	"github.com/ynt-app/youtube-no-translation/internal/page"
)

// bind attaches the engine to a live page. Browser bindings live outside
// this module; an embedder replaces this file with one that dials its
// DevTools (or equivalent) connection and returns the realm plus the
// navigation sources it exposes.
func bind(context.Context) (page.Realm, []page.NavigationSource, error) {
	return nil, nil, fmt.Errorf("no page binding compiled into this build")
}
