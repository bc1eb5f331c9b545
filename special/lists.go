package special

import (
	"strconv"

	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/namespaces"
	"github.com/ottm-wiki/wiki/wikis/wiki_service"
)

const defaultListLimit = 50

// recentChanges implements "RecentChanges", grounded on
// original_source's RecentChangesSpecialPage (a TODO stub there beyond
// "list recent revisions"); open to every principal since it only
// reads public revision metadata.
type recentChanges struct {
	svc *wiki_service.Service
}

func (p *recentChanges) Name() string                               { return "RecentChanges" }
func (p *recentChanges) PermissionsRequired() []entities.Permission { return nil }

func (p *recentChanges) Handle(req Request) (Result, *Redirect, error) {
	if p.svc.Browse == nil {
		return Result{"revisions": []entities.Revision{}}, nil, nil
	}
	limit := parseLimitArg(req, defaultListLimit)
	since := req.Now.AddDate(0, 0, -30)
	return Result{"revisions": p.svc.Browse.RecentChanges(since, limit)}, nil, nil
}

// contributions implements "Contributions": revisions authored by one
// principal, resolved by username from the first path segment.
type contributions struct {
	svc *wiki_service.Service
}

func (p *contributions) Name() string                               { return "Contributions" }
func (p *contributions) PermissionsRequired() []entities.Permission { return nil }

func (p *contributions) Handle(req Request) (Result, *Redirect, error) {
	if len(req.Args) == 0 || req.Args[0] == "" {
		return nil, nil, UserDoesNotExistError{}
	}
	name := req.Args[0]
	principal, ok := p.svc.Principals.GetByName(name)
	if !ok {
		return nil, nil, UserDoesNotExistError{Name: name}
	}
	if p.svc.Browse == nil {
		return Result{"user": principal, "revisions": []entities.Revision{}}, nil, nil
	}
	limit := parseLimitArg(req, defaultListLimit)
	return Result{"user": principal, "revisions": p.svc.Browse.ContributionsOf(principal.ID, limit)}, nil, nil
}

// subpages implements "Subpages", listing the descendants of a page
// title within the main namespace (the only namespace the original
// exposes this for).
type subpages struct {
	svc *wiki_service.Service
}

func (p *subpages) Name() string                               { return "Subpages" }
func (p *subpages) PermissionsRequired() []entities.Permission { return nil }

func (p *subpages) Handle(req Request) (Result, *Redirect, error) {
	if len(req.Args) == 0 || req.Args[0] == "" {
		return Result{"title": "", "subpages": []string{}}, nil, nil
	}
	title := joinArgs(req.Args)
	if p.svc.Browse == nil {
		return Result{"title": title, "subpages": []string{}}, nil, nil
	}
	return Result{"title": title, "subpages": p.svc.Browse.Subpages(namespaces.Main, title)}, nil, nil
}

// randomPage implements "RandomPage": picks a uniformly random article
// and redirects to it, per original_source's _random_page.py (also a
// TODO stub there beyond "pick one and redirect").
type randomPage struct {
	svc *wiki_service.Service
}

func (p *randomPage) Name() string                               { return "RandomPage" }
func (p *randomPage) PermissionsRequired() []entities.Permission { return nil }

func (p *randomPage) Handle(req Request) (Result, *Redirect, error) {
	if p.svc.Browse == nil {
		return nil, nil, NoPagesError{}
	}
	page, ok := p.svc.Browse.RandomPage(namespaces.Main)
	if !ok {
		return nil, nil, NoPagesError{}
	}
	return nil, &Redirect{PageTitle: page.Title}, nil
}

// specialPages implements "SpecialPages": lists every registered
// special page the dispatching principal is allowed to use.
type specialPages struct {
	dispatcher *Dispatcher
	principals interface {
		Groups() map[string]entities.UserGroup
	}
}

func (p *specialPages) Name() string                               { return "SpecialPages" }
func (p *specialPages) PermissionsRequired() []entities.Permission { return nil }

func (p *specialPages) Handle(req Request) (Result, *Redirect, error) {
	groups := p.principals.Groups()
	var available []string
	for _, page := range p.dispatcher.Pages() {
		allowed := true
		for _, perm := range page.PermissionsRequired() {
			if !req.Principal.HasPermission(perm, groups) {
				allowed = false
				break
			}
		}
		if allowed {
			available = append(available, page.Name())
		}
	}
	return Result{"pages": available}, nil, nil
}

func parseLimitArg(req Request, fallback int) int {
	if v, ok := req.Post["limit"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += "/" + a
	}
	return out
}
