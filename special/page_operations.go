package special

import (
	"strconv"
	"strings"

	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/wikis/wiki_service"
)

// deletePage implements the "DeletePage" special page, grounded on
// original_source's DeletePageSpecialPage: a page name plus a reason,
// gated on wiki_delete.
type deletePage struct {
	svc *wiki_service.Service
}

func (p *deletePage) Name() string { return "DeletePage" }

func (p *deletePage) PermissionsRequired() []entities.Permission {
	return []entities.Permission{entities.PermWikiDelete}
}

func (p *deletePage) Handle(req Request) (Result, *Redirect, error) {
	targetTitle := strings.Join(req.Args, "/")
	if pageName, ok := req.Post["page_name"]; ok && pageName != "" {
		targetTitle = pageName
	}
	if req.Post != nil {
		if err := p.svc.Delete(req.Principal, targetTitle, req.Post["reason"], req.Now); err != nil {
			return nil, nil, err
		}
		return nil, &Redirect{PageTitle: "Special:DeletePage/" + targetTitle, Args: map[string]string{"done": "true"}}, nil
	}
	return Result{"target_page": targetTitle}, nil, nil
}

// renamePage implements the "RenamePage" special page, gated on
// wiki_rename per spec §4.3.
type renamePage struct {
	svc *wiki_service.Service
}

func (p *renamePage) Name() string { return "RenamePage" }

func (p *renamePage) PermissionsRequired() []entities.Permission {
	return []entities.Permission{entities.PermWikiRename}
}

func (p *renamePage) Handle(req Request) (Result, *Redirect, error) {
	targetTitle := strings.Join(req.Args, "/")
	if req.Post != nil {
		if v, ok := req.Post["page_name"]; ok && v != "" {
			targetTitle = v
		}
		newTitle := req.Post["new_title"]
		leaveRedirect := req.Post["leave_redirect"] == "true"
		if err := p.svc.Rename(req.Principal, targetTitle, newTitle, leaveRedirect, req.Post["reason"], req.Now); err != nil {
			return nil, nil, err
		}
		return nil, &Redirect{PageTitle: "Special:RenamePage/" + newTitle, Args: map[string]string{"done": "true"}}, nil
	}
	return Result{"target_page": targetTitle}, nil, nil
}

// protectPage implements the "ProtectPage" special page, gated on
// wiki_protect.
type protectPage struct {
	svc *wiki_service.Service
}

func (p *protectPage) Name() string { return "ProtectPage" }

func (p *protectPage) PermissionsRequired() []entities.Permission {
	return []entities.Permission{entities.PermWikiProtect}
}

func (p *protectPage) Handle(req Request) (Result, *Redirect, error) {
	targetTitle := strings.Join(req.Args, "/")
	if req.Post != nil {
		if v, ok := req.Post["page_name"]; ok && v != "" {
			targetTitle = v
		}
		protectTalks := req.Post["protect_talks"] == "true"
		if err := p.svc.Protect(req.Principal, targetTitle, req.Post["protection_level"], protectTalks, req.Post["reason"], nil, req.Now); err != nil {
			return nil, nil, err
		}
		return nil, &Redirect{PageTitle: "Special:ProtectPage/" + targetTitle, Args: map[string]string{"done": "true"}}, nil
	}
	return Result{"target_page": targetTitle}, nil, nil
}

// changePageLanguage implements "ChangePageLanguage". The original
// grants it to any authenticated principal rather than a dedicated
// permission, relying on the normal edit gate (can_edit_page) inside
// set_page_content_language; ChangeContentLanguage reproduces that by
// running through auth.CanEdit rather than a fixed permission list.
type changePageLanguage struct {
	svc *wiki_service.Service
}

func (p *changePageLanguage) Name() string                             { return "ChangePageLanguage" }
func (p *changePageLanguage) PermissionsRequired() []entities.Permission { return nil }

func (p *changePageLanguage) Handle(req Request) (Result, *Redirect, error) {
	targetTitle := strings.Join(req.Args, "/")
	if req.Post != nil {
		if v, ok := req.Post["page_name"]; ok && v != "" {
			targetTitle = v
		}
		if err := p.svc.ChangeContentLanguage(req.Principal, targetTitle, req.Post["content_language"], req.Now); err != nil {
			return nil, nil, err
		}
		return nil, &Redirect{PageTitle: "Special:ChangePageLanguage/" + targetTitle, Args: map[string]string{"done": "true"}}, nil
	}
	return Result{"target_page": targetTitle}, nil, nil
}

// changePageContentType implements "ChangePageContentType", gated the
// same way changePageLanguage is.
type changePageContentType struct {
	svc *wiki_service.Service
}

func (p *changePageContentType) Name() string                             { return "ChangePageContentType" }
func (p *changePageContentType) PermissionsRequired() []entities.Permission { return nil }

func (p *changePageContentType) Handle(req Request) (Result, *Redirect, error) {
	targetTitle := strings.Join(req.Args, "/")
	if req.Post != nil {
		if v, ok := req.Post["page_name"]; ok && v != "" {
			targetTitle = v
		}
		contentType := entities.ContentType(req.Post["content_type"])
		if err := p.svc.ChangeContentType(req.Principal, targetTitle, contentType, req.Now); err != nil {
			return nil, nil, err
		}
		return nil, &Redirect{PageTitle: "Special:ChangePageContentType/" + targetTitle, Args: map[string]string{"done": "true"}}, nil
	}
	return Result{"target_page": targetTitle}, nil, nil
}

// maskRevisions implements "MaskRevisions": its arguments are revision
// ids rather than a page title, matching the original's
// MaskRevisionsSpecialPage. Gated on wiki_mask (spec §4.3's
// mask_revisions requirement; the permission list SPEC_FULL carries is
// exercised, not the original's narrower PERM_MASK).
type maskRevisions struct {
	svc *wiki_service.Service
}

func (p *maskRevisions) Name() string { return "MaskRevisions" }

func (p *maskRevisions) PermissionsRequired() []entities.Permission {
	return []entities.Permission{entities.PermWikiMask}
}

func (p *maskRevisions) Handle(req Request) (Result, *Redirect, error) {
	var ids []int64
	for _, arg := range req.Args {
		if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	if req.Post != nil {
		action := entities.RevisionMaskAction(req.Post["action"])
		if err := p.svc.MaskRevisions(req.Principal, ids, action, req.Post["reason"], req.Now); err != nil {
			return nil, nil, err
		}
		return nil, &Redirect{PageTitle: "Special:MaskRevisions", Args: map[string]string{"done": "true"}}, nil
	}
	return Result{"revision_ids": ids}, nil, nil
}
