/*
 *  Licensed to Wikifeat under one or more contributor license agreements.
 *  See the LICENSE.txt file distributed with this work for additional information
 *  regarding copyright ownership.
 *
 *  Redistribution and use in source and binary forms, with or without
 *  modification, are permitted provided that the following conditions are met:
 *
 *  * Redistributions of source code must retain the above copyright notice,
 *  this list of conditions and the following disclaimer.
 *  * Redistributions in binary form must reproduce the above copyright
 *  notice, this list of conditions and the following disclaimer in the
 *  documentation and/or other materials provided with the distribution.
 *  * Neither the name of Wikifeat nor the names of its contributors may be used
 *  to endorse or promote products derived from this software without
 *  specific prior written permission.
 *
 *  THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
 *  AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
 *  IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
 *  ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT OWNER OR CONTRIBUTORS BE
 *  LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
 *  CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
 *  SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
 *  INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
 *  CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
 *  ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 *  POSSIBILITY OF SUCH DAMAGE.
 */

// Package wiki_service implements the C3 service layer: it sits between
// the HTTP/UI collaborators and the storage boundary in common/database,
// gating every mutation through auth (C4) before delegating to the
// repository, and orchestrating the parser (C5) for rendering and
// derived-index maintenance. Method shapes (one call per page
// operation, acting principal first, typed error last) follow the
// teacher's PageManager.
package wiki_service

import (
	"fmt"
	"time"

	"github.com/ottm-wiki/wiki/auth"
	"github.com/ottm-wiki/wiki/common/config"
	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/common/i18n"
	"github.com/ottm-wiki/wiki/namespaces"
	"github.com/ottm-wiki/wiki/titles"
	"github.com/ottm-wiki/wiki/wikitext/parser"
	"github.com/ottm-wiki/wiki/wikitext/registry"
)

// Service is the C3 entry point. It is safe for concurrent use; all
// synchronization is the repository's responsibility.
type Service struct {
	Pages      database.PageRepository
	Principals database.PrincipalRepository
	// Stats backs the NUMBER_OF_*/PAGES_IN_* magic variables. New sets it
	// automatically when Pages also implements database.StatsRepository;
	// it stays nil otherwise, and statsAdapter reports zero in that case
	// rather than failing the parse.
	Stats database.StatsRepository
	// Browse backs the site-wide special pages (RecentChanges,
	// Contributions, Subpages, RandomPage). Set automatically when Pages
	// also implements database.BrowseRepository.
	Browse database.BrowseRepository
}

// New builds a Service over the given repositories.
func New(pages database.PageRepository, principals database.PrincipalRepository) *Service {
	svc := &Service{Pages: pages, Principals: principals}
	if sr, ok := pages.(database.StatsRepository); ok {
		svc.Stats = sr
	}
	if br, ok := pages.(database.BrowseRepository); ok {
		svc.Browse = br
	}
	return svc
}

// ReadResult is what RenderedPage returns: the resolved page, its
// rendered HTML, parse metadata, and — when content redirected — the
// title the request actually started from.
type ReadResult struct {
	Namespace     entities.Namespace
	Title         string
	Page          entities.Page
	Revision      entities.Revision
	HTML          string
	Metadata      parser.ParsingMetadata
	RedirectsFrom string
}

// authRequest builds the auth.Request shared by every gate check.
func (s *Service) authRequest(principal entities.Principal, ns entities.Namespace, title string, now time.Time) auth.Request {
	var protection *entities.PageProtection
	if p, ok := s.Pages.Protection(ns.ID, title); ok {
		protection = &p
	}
	return auth.Request{
		Principal:  principal,
		Namespace:  ns,
		Title:      title,
		Protection: protection,
		Groups:     s.Principals.Groups(),
		Now:        now,
	}
}

// RenderedPage resolves rawTitle, follows at most one redirect hop, and
// returns the target's latest revision parsed to HTML. If that revision
// is hidden and the principal lacks wiki_mask, it returns
// MissingPermissionError instead; this read check applies to the
// target, not the page the request started at. Protection is not
// checked on read.
func (s *Service) RenderedPage(principal entities.Principal, rawTitle string, now time.Time) (ReadResult, error) {
	ns, title, err := titles.Resolve(rawTitle)
	if err != nil {
		return ReadResult{}, err
	}

	redirectsFrom := ""
	page, err := s.Pages.Get(ns.ID, title)
	if err != nil {
		return ReadResult{}, err
	}
	if page.Exists && page.IsRedirect() {
		redirectsFrom = ns.FullTitle(title)
		ns, title = namespaces.MustByID(page.RedirectsTo.NamespaceID), page.RedirectsTo.Title
		page, err = s.Pages.Get(ns.ID, title)
		if err != nil {
			return ReadResult{}, err
		}
	}

	if !page.Exists {
		return ReadResult{}, database.PageDoesNotExistError{NamespaceID: ns.ID, Title: title}
	}

	rev, err := s.latestRevision(ns.ID, title)
	if err != nil {
		return ReadResult{}, err
	}
	if !auth.CanRead(principal, s.Principals.Groups(), &rev.Hidden) {
		return ReadResult{}, database.MissingPermissionError{Perms: []string{string(entities.PermWikiMask)}}
	}

	if page.Cache.Valid(now, rev.ID) {
		return ReadResult{
			Namespace: ns, Title: title, Page: page, Revision: rev,
			HTML: page.Cache.HTML,
			Metadata: parser.ParsingMetadata{
				ParseDurationMS: page.Cache.ParseDurationMS,
				ParseDate:       page.Cache.ParseDate,
				SizeBefore:      page.Cache.SizeBefore,
				SizeAfter:       page.Cache.SizeAfter,
			},
			RedirectsFrom: redirectsFrom,
		}, nil
	}

	html, meta, err := parser.Parse(parser.Request{
		Content:      rev.Content,
		Context:      s.buildContext(ns, title, page, &rev, now, false, 0),
		MaxParseSize: config.Wiki.MaxParseSize,
	})
	if err != nil {
		return ReadResult{}, err
	}

	s.Pages.SetDerivedIndexes(ns.ID, title, meta.Categories, meta.Links)

	return ReadResult{
		Namespace: ns, Title: title, Page: page, Revision: rev,
		HTML: html, Metadata: meta, RedirectsFrom: redirectsFrom,
	}, nil
}

func (s *Service) latestRevision(namespaceID int, title string) (entities.Revision, error) {
	revs, err := s.Pages.Revisions(namespaceID, title)
	if err != nil {
		return entities.Revision{}, err
	}
	return revs[len(revs)-1], nil
}

// Edit implements spec §4.3's edit sequence for the C3/C4 boundary: gate
// with auth.CanEdit, materialize an anonymous account by IP when
// needed, then delegate the transactional part to the repository.
func (s *Service) Edit(principal entities.Principal, rawTitle string, req database.EditRequest, now time.Time) (entities.Revision, error) {
	ns, title, err := titles.Resolve(rawTitle)
	if err != nil {
		return entities.Revision{}, err
	}
	req.NamespaceID, req.Title = ns.ID, title

	if err := auth.CanEdit(s.authRequest(principal, ns, title, now)); err != nil {
		return entities.Revision{}, err
	}

	authorID := principal.ID
	if principal.Anonymous {
		authorID = s.Principals.GetOrCreateAnonymous(principal.Name, now).ID
	}

	rev, err := s.Pages.Edit(authorID, req, now)
	if err != nil {
		return entities.Revision{}, err
	}

	page, err := s.Pages.Get(ns.ID, title)
	if err != nil {
		return rev, err
	}
	_, meta, perr := parser.Parse(parser.Request{
		Content:      rev.Content,
		Context:      s.buildContext(ns, title, page, &rev, now, false, 0),
		MaxParseSize: config.Wiki.MaxParseSize,
	})
	if perr == nil {
		s.Pages.SetDerivedIndexes(ns.ID, title, meta.Categories, meta.Links)
	}

	return rev, nil
}

// requirePermission gates a structural operation on a single permission,
// the shape every operation besides Edit/RenderedPage uses (spec §4.3's
// delete/rename/protect/mask_revisions all gate on exactly one
// permission rather than CanEdit's ordered checklist).
func requirePermission(principal entities.Principal, groups map[string]entities.UserGroup, perm entities.Permission) error {
	if !principal.HasPermission(perm, groups) {
		return database.MissingPermissionError{Perms: []string{string(perm)}}
	}
	return nil
}

// Delete marks a page deleted, requiring wiki_delete.
func (s *Service) Delete(principal entities.Principal, rawTitle string, reason string, now time.Time) error {
	ns, title, err := titles.Resolve(rawTitle)
	if err != nil {
		return err
	}
	if err := requirePermission(principal, s.Principals.Groups(), entities.PermWikiDelete); err != nil {
		return err
	}
	return s.Pages.Delete(principal.ID, ns.ID, title, reason, now)
}

// Rename moves a page to newTitle, requiring wiki_rename, optionally
// leaving a redirect behind at the old title.
func (s *Service) Rename(principal entities.Principal, rawTitle, rawNewTitle string, leaveRedirect bool, reason string, now time.Time) error {
	ns, title, err := titles.Resolve(rawTitle)
	if err != nil {
		return err
	}
	newNS, newTitle, err := titles.Resolve(rawNewTitle)
	if err != nil {
		return err
	}
	if newNS.ID != ns.ID {
		return database.CannotEditPageError{FullTitle: newNS.FullTitle(newTitle)}
	}
	if err := requirePermission(principal, s.Principals.Groups(), entities.PermWikiRename); err != nil {
		return err
	}
	return s.Pages.Rename(principal.ID, ns.ID, title, newTitle, leaveRedirect, reason, now)
}

// Protect upserts a page's protection record, requiring wiki_protect.
func (s *Service) Protect(principal entities.Principal, rawTitle string, level string, protectTalks bool, reason string, endDate *time.Time, now time.Time) error {
	ns, title, err := titles.Resolve(rawTitle)
	if err != nil {
		return err
	}
	if err := requirePermission(principal, s.Principals.Groups(), entities.PermWikiProtect); err != nil {
		return err
	}
	return s.Pages.Protect(principal.ID, ns.ID, title, level, protectTalks, reason, endDate, now)
}

// MaskRevisions hides or unhides revision content/comments, requiring
// wiki_mask.
func (s *Service) MaskRevisions(principal entities.Principal, revisionIDs []int64, action database.MaskAction, reason string, now time.Time) error {
	if err := requirePermission(principal, s.Principals.Groups(), entities.PermWikiMask); err != nil {
		return err
	}
	return s.Pages.MaskRevisions(principal.ID, revisionIDs, action, reason, now)
}

// ChangeContentLanguage updates a page's content language, gated the
// same way a content edit is (it changes the page's metadata, not its
// revisions).
func (s *Service) ChangeContentLanguage(principal entities.Principal, rawTitle, language string, now time.Time) error {
	ns, title, err := titles.Resolve(rawTitle)
	if err != nil {
		return err
	}
	if err := auth.CanEdit(s.authRequest(principal, ns, title, now)); err != nil {
		return err
	}
	return s.Pages.SetContentLanguage(ns.ID, title, language)
}

// ChangeContentType updates a page's content type, gated the same way a
// content edit is.
func (s *Service) ChangeContentType(principal entities.Principal, rawTitle string, contentType entities.ContentType, now time.Time) error {
	ns, title, err := titles.Resolve(rawTitle)
	if err != nil {
		return err
	}
	if err := auth.CanEdit(s.authRequest(principal, ns, title, now)); err != nil {
		return err
	}
	return s.Pages.SetContentType(ns.ID, title, contentType)
}

// Follow toggles the caller's follow status on a page; anonymous
// principals are silently no-ops, matching PageRepository.Follow.
func (s *Service) Follow(principal entities.Principal, rawTitle string, follow bool, now time.Time) (bool, error) {
	ns, title, err := titles.Resolve(rawTitle)
	if err != nil {
		return false, err
	}
	return s.Pages.Follow(principal.ID, principal.Anonymous, ns.ID, title, follow, now)
}

// RefreshCaches implements C8's refresh_page_caches job: re-parse every
// page whose cache has expired. The render closure fetches the page and
// its latest revision fresh (RefreshExpiredCaches calls it with no
// store lock held) so transclusion inside the parse can call back into
// s.Pages without deadlocking.
func (s *Service) RefreshCaches(now time.Time) (int, error) {
	return s.Pages.RefreshExpiredCaches(now, func(namespaceID int, title, content string) (string, int64) {
		ns, ok := namespaces.ByID(namespaceID)
		if !ok {
			return content, 0
		}
		page, err := s.Pages.Get(namespaceID, title)
		if err != nil {
			return content, 0
		}
		rev, err := s.latestRevision(namespaceID, title)
		if err != nil {
			return content, 0
		}
		html, meta, err := parser.Parse(parser.Request{
			Content:      content,
			Context:      s.buildContext(ns, title, page, &rev, now, false, 0),
			MaxParseSize: config.Wiki.MaxParseSize,
		})
		if err != nil {
			return content, 0
		}
		s.Pages.SetDerivedIndexes(namespaceID, title, meta.Categories, meta.Links)
		return html, meta.ParseDurationMS
	})
}

// buildContext assembles the registry.Context a parse runs against,
// wiring the PageExists and Transclude closures back to this Service so
// wikitext/registry and wikitext/parser never import common/database
// directly.
func (s *Service) buildContext(ns entities.Namespace, title string, page entities.Page, rev *entities.Revision, now time.Time, transcluded bool, depth int) registry.Context {
	return registry.Context{
		Now:          now,
		SiteName:     config.Wiki.SiteName,
		ServerURL:    config.Wiki.ServerURL,
		ServerName:   config.Wiki.ServerName,
		StaticPath:   config.Wiki.StaticPath,
		WikiPath:     config.Wiki.WikiPathPrefix,
		WikiAPIPath:  config.Wiki.WikiPathPrefix + "api/",
		Namespace:    ns,
		Title:        title,
		Page:         page,
		Revision:     rev,
		Transcluded:  transcluded,
		Stats:        statsAdapter{svc: s},
		URLEncode:    titles.URLEncode,
		FormatNumber: i18n.FormatNumber,
		FormatDate:   i18n.FormatDate,
		PageExists: func(rawTitle string) bool {
			tns, ttitle, err := titles.Resolve(rawTitle)
			if err != nil {
				return false
			}
			p, err := s.Pages.Get(tns.ID, ttitle)
			return err == nil && p.Exists && !p.Deleted
		},
		Transclude: func(rawTitle string) (string, error) {
			if depth >= config.Wiki.MaxTranscludeDepth {
				return "", fmt.Errorf("transclusion depth exceeds %d", config.Wiki.MaxTranscludeDepth)
			}
			tns, ttitle, err := titles.Resolve(rawTitle)
			if err != nil {
				return "", err
			}
			tpage, err := s.Pages.Get(tns.ID, ttitle)
			if err != nil || !tpage.Exists || tpage.Deleted {
				return "", database.PageDoesNotExistError{NamespaceID: tns.ID, Title: ttitle}
			}
			trev, err := s.latestRevision(tns.ID, ttitle)
			if err != nil {
				return "", err
			}
			out, _, err := parser.Parse(parser.Request{
				Content:      trev.Content,
				Context:      s.buildContext(tns, ttitle, tpage, &trev, now, true, depth+1),
				MaxParseSize: config.Wiki.MaxParseSize,
			})
			return out, err
		},
	}
}
