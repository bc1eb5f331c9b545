package special

import (
	"github.com/ottm-wiki/wiki/wikis/wiki_service"
)

// NewWikiDispatcher builds a Dispatcher carrying every special page
// spec §4.7 enumerates, wired against a single Service.
func NewWikiDispatcher(svc *wiki_service.Service) *Dispatcher {
	d := NewDispatcher()

	d.Register(&deletePage{svc: svc})
	d.Register(&renamePage{svc: svc})
	d.Register(&protectPage{svc: svc})
	d.Register(&changePageLanguage{svc: svc})
	d.Register(&changePageContentType{svc: svc})
	d.Register(&maskRevisions{svc: svc})

	d.Register(&recentChanges{svc: svc})
	d.Register(&contributions{svc: svc})
	d.Register(&subpages{svc: svc})
	d.Register(&randomPage{svc: svc})

	d.Register(&mute{principals: svc.Principals})
	d.Register(&sendEmail{principals: svc.Principals})
	d.Register(&editFollowList{svc: svc})

	d.Register(&specialPages{dispatcher: d, principals: svc.Principals})

	return d
}
