// Package auth implements C4: the ordered gate checks that decide
// whether a principal may read, edit, or post to a (namespace, title).
package auth

import (
	"time"

	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/namespaces"
)

// Request is the context a gate check needs: the acting principal, the
// target (namespace, title), the current protection record (if any),
// and the currently-known group table.
type Request struct {
	Principal   entities.Principal
	Namespace   entities.Namespace
	Title       string
	Protection  *entities.PageProtection
	Groups      map[string]entities.UserGroup
	Now         time.Time
}

func missingPermissions(p entities.Principal, groups map[string]entities.UserGroup, perms []entities.Permission) []entities.Permission {
	var missing []entities.Permission
	for _, perm := range perms {
		if !p.HasPermission(perm, groups) {
			missing = append(missing, perm)
		}
	}
	return missing
}

func missingPermissionError(perms []entities.Permission) error {
	strs := make([]string, len(perms))
	for i, p := range perms {
		strs[i] = string(p)
	}
	return database.MissingPermissionError{Perms: strs}
}

// CanEdit implements spec §4.4's ordered checks 1–5 for edit access.
func CanEdit(req Request) error {
	// 1. Namespace edit floor.
	if !req.Namespace.IsEditable {
		return database.CannotEditPageError{FullTitle: req.Namespace.FullTitle(req.Title)}
	}
	if missing := missingPermissions(req.Principal, req.Groups, req.Namespace.PermsRequired); len(missing) > 0 {
		return missingPermissionError(missing)
	}

	// 2. Principal block / 3. IP block.
	if req.Principal.IsBlocked(req.Now) {
		return database.BlockedError{}
	}

	// 4. Protection.
	if req.Protection != nil && req.Protection.IsActive(req.Now) {
		if !req.Principal.InGroup(req.Protection.ProtectionLevel) {
			return database.ProtectedError{NamespaceID: req.Namespace.ID, Title: req.Title}
		}
	}

	// 5. User-namespace special case.
	if req.Namespace.ID == namespaces.User {
		baseName := baseNameOf(req.Title)
		if baseName != req.Principal.Name && !req.Principal.HasPermission(entities.PermWikiEditUserPages, req.Groups) {
			return missingPermissionError([]entities.Permission{entities.PermWikiEditUserPages})
		}
	}

	return nil
}

// CanPost implements "can_post_messages": the same ordered checks as
// CanEdit, except the block checks relax on the principal's own user
// talk page when the block permits it, and protection is gated on
// ProtectTalks rather than always applying.
func CanPost(req Request) error {
	if !req.Namespace.IsEditable {
		return database.CannotEditPageError{FullTitle: req.Namespace.FullTitle(req.Title)}
	}
	if missing := missingPermissions(req.Principal, req.Groups, req.Namespace.PermsRequired); len(missing) > 0 {
		return missingPermissionError(missing)
	}

	ownUserPage := req.Namespace.ID == namespaces.User && baseNameOf(req.Title) == req.Principal.Name

	if req.Principal.Block != nil && req.Principal.Block.IsActive(req.Now) {
		if !(ownUserPage && req.Principal.Block.AllowMessagesOnOwnUserPage) {
			return database.BlockedError{}
		}
	}
	if req.Principal.Anonymous && req.Principal.IPBlock != nil && req.Principal.IPBlock.IsActive(req.Now) {
		// IPBlock carries no own-talk-page relaxation; an IP block always
		// prevents posting, even to the anonymous user's own talk page.
		return database.BlockedError{}
	}

	if req.Protection != nil && req.Protection.IsActive(req.Now) && req.Protection.ProtectTalks {
		if !req.Principal.InGroup(req.Protection.ProtectionLevel) {
			return database.ProtectedError{NamespaceID: req.Namespace.ID, Title: req.Title}
		}
	}

	return nil
}

// CanRead implements spec §4.4's can_read: true by default, false only
// when the caller lacks wiki_mask and the revision in question is
// hidden. hidden is nil when there is no specific revision in view (for
// instance, reading the latest revision of a page that has none).
func CanRead(principal entities.Principal, groups map[string]entities.UserGroup, hidden *bool) bool {
	if hidden == nil || !*hidden {
		return true
	}
	return principal.HasPermission(entities.PermWikiMask, groups)
}

func baseNameOf(title string) string {
	for i := 0; i < len(title); i++ {
		if title[i] == '/' {
			return title[:i]
		}
	}
	return title
}
