package special

import (
	"strings"

	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/titles"
	"github.com/ottm-wiki/wiki/wikis/wiki_service"
)

// mute implements "Mute", grounded on original_source's
// MuteSpecialPage. Unlike the original (which splits email/notification
// blacklists), SendEmail delivery is out of scope here, so mute only
// toggles the single MutedUser join IsMuted/MuteUser already expose.
type mute struct {
	principals interface {
		GetByName(name string) (entities.Principal, bool)
		MuteUser(muterID, mutedID int64, mute bool)
		IsMuted(muterID, mutedID int64) bool
	}
}

func (p *mute) Name() string                               { return "Mute" }
func (p *mute) PermissionsRequired() []entities.Permission { return nil }

func (p *mute) Handle(req Request) (Result, *Redirect, error) {
	if req.Principal.Anonymous {
		return nil, nil, NotAuthenticatedError{}
	}
	if len(req.Args) == 0 || req.Args[0] == "" {
		return Result{"target_user": nil}, nil, nil
	}
	target, ok := p.principals.GetByName(req.Args[0])
	if !ok {
		return nil, nil, UserDoesNotExistError{Name: req.Args[0]}
	}
	if req.Post != nil {
		muted := req.Post["mute"] == "true"
		p.principals.MuteUser(req.Principal.ID, target.ID, muted)
		return nil, &Redirect{PageTitle: "Special:Mute/" + target.Name, Args: map[string]string{"done": "true"}}, nil
	}
	return Result{
		"target_user": target,
		"muted":       p.principals.IsMuted(req.Principal.ID, target.ID),
	}, nil, nil
}

// sendEmail implements "SendEmail". Per the Non-goal that this module
// carries no email/notification delivery mechanics, Handle validates
// the recipient and form inputs and reports them back without ever
// attempting to send anything.
type sendEmail struct {
	principals interface {
		GetByName(name string) (entities.Principal, bool)
	}
}

func (p *sendEmail) Name() string                               { return "SendEmail" }
func (p *sendEmail) PermissionsRequired() []entities.Permission { return nil }

func (p *sendEmail) Handle(req Request) (Result, *Redirect, error) {
	if req.Principal.Anonymous {
		return nil, nil, NotAuthenticatedError{}
	}
	var target *entities.Principal
	if len(req.Args) > 0 && req.Args[0] != "" {
		if t, ok := p.principals.GetByName(req.Args[0]); ok {
			target = &t
		} else {
			return nil, nil, UserDoesNotExistError{Name: req.Args[0]}
		}
	}
	if req.Post != nil {
		username := req.Post["username"]
		t, ok := p.principals.GetByName(username)
		if !ok {
			return nil, nil, UserDoesNotExistError{Name: username}
		}
		if req.Post["subject"] == "" || req.Post["content"] == "" {
			return Result{"target_user": t, "error": "subject and content are required"}, nil, nil
		}
		return nil, &Redirect{PageTitle: "Special:SendEmail/" + t.Name, Args: map[string]string{"done": "true"}}, nil
	}
	return Result{"target_user": target}, nil, nil
}

// editFollowList implements "EditFollowList", dispatching on the first
// argument the way original_source's EditFollowListSpecialPage matches
// on args: "raw" for a newline-delimited bulk edit, "clear" to drop the
// whole list, anything else for the normal per-page unfollow form.
type editFollowList struct {
	svc *wiki_service.Service
}

func (p *editFollowList) Name() string                               { return "EditFollowList" }
func (p *editFollowList) PermissionsRequired() []entities.Permission { return nil }

func (p *editFollowList) Handle(req Request) (Result, *Redirect, error) {
	if req.Principal.Anonymous {
		return nil, nil, NotAuthenticatedError{}
	}
	action := "edit"
	if len(req.Args) > 0 {
		switch req.Args[0] {
		case "clear":
			action = "clear"
		case "raw":
			action = "edit_raw"
		}
	}

	switch action {
	case "clear":
		if req.Post != nil {
			for _, f := range p.svc.Pages.FollowedPages(req.Principal.ID) {
				_, _ = p.svc.Pages.Follow(req.Principal.ID, false, f.NamespaceID, f.Title, false, req.Now)
			}
			return nil, &Redirect{PageTitle: "Special:EditFollowList", Args: map[string]string{"done": "true"}}, nil
		}
		return Result{"action": action}, nil, nil

	case "edit_raw":
		if req.Post != nil {
			raw := req.Post["page_names"]
			for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				ns, title, err := titles.Resolve(line)
				if err != nil {
					continue
				}
				_, _ = p.svc.Pages.Follow(req.Principal.ID, false, ns.ID, title, true, req.Now)
			}
			return nil, &Redirect{PageTitle: "Special:EditFollowList/raw", Args: map[string]string{"done": "true"}}, nil
		}
		followed := p.svc.Pages.FollowedPages(req.Principal.ID)
		names := make([]string, len(followed))
		for i, f := range followed {
			names[i] = f.Title
		}
		return Result{"action": action, "page_names": strings.Join(names, "\n")}, nil, nil

	default:
		if req.Post != nil {
			for key, v := range req.Post {
				if v != "on" && v != "true" {
					continue
				}
				ns, title, err := titles.Resolve(key)
				if err != nil {
					continue
				}
				_, _ = p.svc.Pages.Follow(req.Principal.ID, false, ns.ID, title, false, req.Now)
			}
			return nil, &Redirect{PageTitle: "Special:EditFollowList", Args: map[string]string{"done": "true"}}, nil
		}
		return Result{"action": action, "pages": p.svc.Pages.FollowedPages(req.Principal.ID)}, nil, nil
	}
}
