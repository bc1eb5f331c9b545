// Package special implements C7: the special-page dispatcher.
// Handlers are plain request/response functions, not HTTP handlers —
// they return a Result context map or a Redirect, mirroring the
// post/redirect/get pattern of the system this spec was distilled
// from, so an HTTP collaborator built on top of this module only has
// to route a URL's first path segment here and render whatever comes
// back.
package special

import (
	"fmt"
	"time"

	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/common/entities"
)

func missingPermissionError(perm entities.Permission) error {
	return database.MissingPermissionError{Perms: []string{string(perm)}}
}

// Redirect is returned by a handler after it applies a POST action, per
// the post/redirect/get pattern: the caller should issue a 302 to
// PageTitle with Args appended as query parameters (conventionally
// "done=true").
type Redirect struct {
	PageTitle string
	Args      map[string]string
}

// Result carries whatever context data a handler's caller needs to
// render the page; kept untyped because each special page shapes its
// own context, the way the original's per-page dict return does.
type Result map[string]interface{}

// Request bundles one dispatch call's inputs.
type Request struct {
	Principal entities.Principal
	// Args are the path segments following the special page's own name,
	// e.g. dispatching "Special:DeletePage/Foo/Bar" yields Args ==
	// []string{"Foo", "Bar"}.
	Args []string
	Post map[string]string
	Now  time.Time
}

// Page is one entry in the special-page dispatcher.
type Page interface {
	Name() string
	// PermissionsRequired lists the permissions Dispatch checks before
	// calling Handle; empty for pages open to every principal.
	PermissionsRequired() []entities.Permission
	Handle(req Request) (Result, *Redirect, error)
}

// UnknownSpecialPageError means the dispatcher has no page registered
// under the requested name.
type UnknownSpecialPageError struct {
	Name string
}

func (e UnknownSpecialPageError) Error() string {
	return fmt.Sprintf("no special page named %q", e.Name)
}

// NotAuthenticatedError means a special page that requires a logged-in
// principal was dispatched to an anonymous one.
type NotAuthenticatedError struct{}

func (NotAuthenticatedError) Error() string { return "special page requires an authenticated principal" }

// UserDoesNotExistError means a special page argument named a principal
// that has no account.
type UserDoesNotExistError struct {
	Name string
}

func (e UserDoesNotExistError) Error() string {
	return fmt.Sprintf("user %q does not exist", e.Name)
}

// NoPagesError means a listing special page (RandomPage) found nothing
// to act on.
type NoPagesError struct{}

func (NoPagesError) Error() string { return "no pages available" }

// Dispatcher holds the registered special pages and routes requests to
// them by name.
type Dispatcher struct {
	pages map[string]Page
	order []string
}

// NewDispatcher builds an empty dispatcher. Register adds pages to it.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{pages: map[string]Page{}}
}

// Register adds (or replaces) a special page under its own Name().
func (d *Dispatcher) Register(p Page) {
	if _, exists := d.pages[p.Name()]; !exists {
		d.order = append(d.order, p.Name())
	}
	d.pages[p.Name()] = p
}

// Pages returns every registered page, in registration order.
func (d *Dispatcher) Pages() []Page {
	out := make([]Page, len(d.order))
	for i, name := range d.order {
		out[i] = d.pages[name]
	}
	return out
}

// Dispatch resolves segments[0] against the registered pages,
// authorizes the request against groups, then delegates to the page's
// Handle with the remaining segments as its Args.
func (d *Dispatcher) Dispatch(principal entities.Principal, groups map[string]entities.UserGroup, segments []string, post map[string]string, now time.Time) (Result, *Redirect, error) {
	if len(segments) == 0 || segments[0] == "" {
		return nil, nil, UnknownSpecialPageError{}
	}
	page, ok := d.pages[segments[0]]
	if !ok {
		return nil, nil, UnknownSpecialPageError{Name: segments[0]}
	}
	for _, perm := range page.PermissionsRequired() {
		if !principal.HasPermission(perm, groups) {
			return nil, nil, missingPermissionError(perm)
		}
	}
	return page.Handle(Request{Principal: principal, Args: segments[1:], Post: post, Now: now})
}
