package database

import (
	"math/rand/v2"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/namespaces"
)

var (
	_ PageRepository      = (*MemoryStore)(nil)
	_ PrincipalRepository = (*MemoryStore)(nil)
	_ StatsRepository     = (*MemoryStore)(nil)
	_ BrowseRepository    = (*MemoryStore)(nil)
)

// MemoryStore is a sync.RWMutex-guarded, in-process reference
// implementation of PageRepository and PrincipalRepository. It gives the
// page/revision tables serializable semantics for every structural
// mutation without requiring an actual database engine, matching the
// concurrency model spec'd for C3 (single transaction per structural
// mutation, optimistic locking on edit).
type MemoryStore struct {
	mu sync.RWMutex

	pages     map[entities.Key]*entities.Page
	revisions map[int64]*entities.Revision
	// revisionsByPage indexes revision ids per page, kept sorted by Date.
	revisionsByPage map[entities.Key][]int64
	categories      map[entities.Key][]entities.PageCategory
	links           map[entities.Key][]entities.PageLink
	follows         map[followKey]entities.PageFollowStatus

	protections map[entities.Key]entities.PageProtection

	principals      map[int64]*entities.Principal
	principalsByIP  map[string]int64
	principalsByName map[string]int64
	groups          map[string]entities.UserGroup
	userBlocks      map[int64]entities.UserBlock
	ipBlocks        map[string]entities.IPBlock
	mutes           map[int64]map[int64]bool

	logs []interface{}

	nextRevisionID  int64
	nextPrincipalID int64
	nextBlockID     int64
	nextLogID       int64
}

type followKey struct {
	userID      int64
	namespaceID int
	title       string
}

// NewMemoryStore builds an empty store seeded with the default group
// vocabulary from common/entities.
func NewMemoryStore() *MemoryStore {
	groups := map[string]entities.UserGroup{
		entities.GroupAll: entities.NewUserGroup(entities.GroupAll, false),
	}
	for _, g := range []struct {
		label string
		perms []entities.Permission
	}{
		{entities.GroupSuperuser, entities.AllPermissions},
		{entities.GroupAdministrator, []entities.Permission{
			entities.PermWikiEdit, entities.PermWikiDelete, entities.PermWikiRename,
			entities.PermWikiRevert, entities.PermWikiProtect, entities.PermWikiMask,
			entities.PermBlockUsers, entities.PermWikiEditUserPages, entities.PermWikiEditInterface,
		}},
		{entities.GroupPatroller, []entities.Permission{entities.PermWikiEdit, entities.PermWikiRevert}},
		{entities.GroupAutopatrolled, []entities.Permission{entities.PermWikiEdit}},
		{entities.GroupUser, []entities.Permission{entities.PermWikiEdit}},
	} {
		groups[g.label] = entities.NewUserGroup(g.label, true, g.perms...)
	}

	return &MemoryStore{
		pages:            map[entities.Key]*entities.Page{},
		revisions:        map[int64]*entities.Revision{},
		revisionsByPage:  map[entities.Key][]int64{},
		categories:       map[entities.Key][]entities.PageCategory{},
		links:            map[entities.Key][]entities.PageLink{},
		follows:          map[followKey]entities.PageFollowStatus{},
		protections:      map[entities.Key]entities.PageProtection{},
		principals:       map[int64]*entities.Principal{},
		principalsByIP:   map[string]int64{},
		principalsByName: map[string]int64{},
		groups:           groups,
		userBlocks:       map[int64]entities.UserBlock{},
		ipBlocks:         map[string]entities.IPBlock{},
		mutes:            map[int64]map[int64]bool{},
	}
}

var redirectPattern = regexp.MustCompile(`^@REDIRECT\[\[([^\[\]]+)]]$`)

func key(namespaceID int, title string) entities.Key {
	return entities.Key{NamespaceID: namespaceID, Title: title}
}

// Get implements PageRepository.
func (s *MemoryStore) Get(namespaceID int, title string) (entities.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.pages[key(namespaceID, title)]; ok {
		return *p, nil
	}
	return entities.Page{NamespaceID: namespaceID, Title: title, Exists: false}, nil
}

func (s *MemoryStore) latestRevisionIDLocked(k entities.Key) int64 {
	ids := s.revisionsByPage[k]
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// Edit implements the storage side of the spec §4.3 edit sequence.
// Authorization is the caller's job via the auth package, and the author
// id must already exist: anonymous accounts are materialized by
// wiki_service.Service.Edit before it calls here. Edit enforces the
// optimistic lock and performs the storage-side effects.
func (s *MemoryStore) Edit(authorID int64, req EditRequest, now time.Time) (entities.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(req.NamespaceID, req.Title)
	latest := s.latestRevisionIDLocked(k)
	if latest != req.SnapshotRevisionID {
		return entities.Revision{}, ConcurrentEditError{}
	}

	author, ok := s.principals[authorID]
	if !ok {
		return entities.Revision{}, PageDoesNotExistError{NamespaceID: req.NamespaceID, Title: req.Title}
	}

	page, existed := s.pages[k]
	if !existed {
		page = &entities.Page{NamespaceID: req.NamespaceID, Title: req.Title, ContentType: entities.ContentWikipage, Exists: true}
		s.pages[k] = page
	}
	page.Exists = true
	page.Deleted = false

	id := atomic.AddInt64(&s.nextRevisionID, 1)
	rev := entities.Revision{
		ID:              id,
		PageNamespaceID: req.NamespaceID,
		PageTitle:       req.Title,
		Date:            now,
		Author:          author.Name,
		AuthorID:        authorID,
		Comment:         req.Comment,
		Minor:           req.Minor,
		Bot:             req.Bot,
		Content:         req.Content,
		PageCreation:    !existed,
	}
	s.revisions[id] = &rev
	s.revisionsByPage[k] = append(s.revisionsByPage[k], id)

	if req.Follow && !author.Anonymous {
		s.follows[followKey{authorID, req.NamespaceID, req.Title}] = entities.PageFollowStatus{
			UserID: authorID, NamespaceID: req.NamespaceID, Title: req.Title,
		}
	} else if !req.Follow {
		delete(s.follows, followKey{authorID, req.NamespaceID, req.Title})
	}

	s.refreshDerivedIndexesLocked(k, page, req.Content)

	return rev, nil
}

// refreshDerivedIndexesLocked implements the storage part of spec §4.3
// step 7: it recomputes the redirect target and invalidates the parse
// cache. Category extraction and link extraction beyond redirect
// detection are the
// parser's job (wikitext/parser); the repository only tracks the rows
// the parser hands it via SetDerivedIndexes.
func (s *MemoryStore) refreshDerivedIndexesLocked(k entities.Key, page *entities.Page, content string) {
	trimmed := strings.TrimSpace(content)
	if m := redirectPattern.FindStringSubmatch(trimmed); m != nil {
		ns, title := splitRedirectTarget(m[1])
		page.RedirectsTo = &entities.RedirectTarget{NamespaceID: ns, Title: title}
	} else {
		page.RedirectsTo = nil
	}
	page.Cache = nil
}

// splitRedirectTarget resolves a redirect target's "Namespace:Title" form
// against the namespace registry with a bare ":" split. The target text
// is taken as written in the page content; it is not canonicalized.
func splitRedirectTarget(raw string) (int, string) {
	if idx := strings.Index(raw, namespaces.Separator); idx >= 0 {
		if ns, ok := namespaces.ByName(raw[:idx]); ok {
			return ns.ID, raw[idx+1:]
		}
	}
	return namespaces.Main, raw
}

// SetDerivedIndexes replaces the stored categories and links for a page,
// as computed by the wikicode parser during an edit or a cache refresh.
func (s *MemoryStore) SetDerivedIndexes(namespaceID int, title string, categories []entities.PageCategory, links []entities.PageLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(namespaceID, title)
	s.categories[k] = categories
	s.links[k] = links
}

// Delete implements PageRepository.
func (s *MemoryStore) Delete(performerID int64, namespaceID int, title string, reason string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(namespaceID, title)
	page, ok := s.pages[k]
	if !ok {
		return PageDoesNotExistError{NamespaceID: namespaceID, Title: title}
	}
	page.Deleted = true
	s.logs = append(s.logs, entities.PageDeletionLog{
		LogEntry:    entities.LogEntry{ID: s.nextLogIDLocked(), Date: now, Performer: s.nameOfLocked(performerID), Reason: reason},
		NamespaceID: namespaceID,
		Title:       title,
	})
	return nil
}

// Rename implements PageRepository.
func (s *MemoryStore) Rename(performerID int64, namespaceID int, title string, newTitle string, leaveRedirect bool, reason string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldKey := key(namespaceID, title)
	page, ok := s.pages[oldKey]
	if !ok {
		return PageDoesNotExistError{NamespaceID: namespaceID, Title: title}
	}
	newKey := key(namespaceID, newTitle)
	if existing, ok := s.pages[newKey]; ok && existing.Exists && !existing.Deleted {
		return TitleAlreadyExistsError{NamespaceID: namespaceID, Title: newTitle}
	}

	page.Title = newTitle
	s.pages[newKey] = page
	delete(s.pages, oldKey)

	revIDs := s.revisionsByPage[oldKey]
	for _, id := range revIDs {
		s.revisions[id].PageTitle = newTitle
	}
	s.revisionsByPage[newKey] = revIDs
	delete(s.revisionsByPage, oldKey)

	s.categories[newKey] = s.categories[oldKey]
	s.links[newKey] = s.links[oldKey]
	delete(s.categories, oldKey)
	delete(s.links, oldKey)

	if leaveRedirect {
		redirectContent := "@REDIRECT[[" + newTitle + "]]"
		id := atomic.AddInt64(&s.nextRevisionID, 1)
		rev := entities.Revision{
			ID: id, PageNamespaceID: namespaceID, PageTitle: title, Date: now,
			Author: s.nameOfLocked(performerID), AuthorID: performerID,
			Content: redirectContent, PageCreation: true,
		}
		s.revisions[id] = &rev
		redirectPage := &entities.Page{
			NamespaceID: namespaceID, Title: title, ContentType: entities.ContentWikipage, Exists: true,
			RedirectsTo: &entities.RedirectTarget{NamespaceID: namespaceID, Title: newTitle},
		}
		s.pages[oldKey] = redirectPage
		s.revisionsByPage[oldKey] = []int64{id}
	}

	s.logs = append(s.logs, entities.PageRenameLog{
		LogEntry:       entities.LogEntry{ID: s.nextLogIDLocked(), Date: now, Performer: s.nameOfLocked(performerID), Reason: reason},
		OldNamespaceID: namespaceID, OldTitle: title,
		NewNamespaceID: namespaceID, NewTitle: newTitle,
		LeftRedirect: leaveRedirect,
	})
	return nil
}

// Protect implements PageRepository.
func (s *MemoryStore) Protect(performerID int64, namespaceID int, title string, level string, protectTalks bool, reason string, endDate *time.Time, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(namespaceID, title)
	s.protections[k] = entities.PageProtection{
		NamespaceID: namespaceID, Title: title, ProtectionLevel: level,
		ProtectTalks: protectTalks, Reason: reason, CreatedAt: now, EndDate: endDate,
	}
	s.logs = append(s.logs, entities.PageProtectionLog{
		LogEntry:        entities.LogEntry{ID: s.nextLogIDLocked(), Date: now, Performer: s.nameOfLocked(performerID), Reason: reason},
		NamespaceID:     namespaceID, Title: title, ProtectionLevel: level, ProtectTalks: protectTalks, EndDate: endDate,
	})
	return nil
}

// SetContentLanguage implements PageRepository.
func (s *MemoryStore) SetContentLanguage(namespaceID int, title string, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[key(namespaceID, title)]
	if !ok || !page.Exists {
		return PageDoesNotExistError{NamespaceID: namespaceID, Title: title}
	}
	page.ContentLanguage = language
	return nil
}

// SetContentType implements PageRepository.
func (s *MemoryStore) SetContentType(namespaceID int, title string, contentType entities.ContentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[key(namespaceID, title)]
	if !ok || !page.Exists {
		return PageDoesNotExistError{NamespaceID: namespaceID, Title: title}
	}
	page.ContentType = contentType
	return nil
}

// Protection returns the stored protection for (namespaceID, title), if
// any, whether or not it is still active.
func (s *MemoryStore) Protection(namespaceID int, title string) (entities.PageProtection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.protections[key(namespaceID, title)]
	return p, ok
}

// MaskRevisions implements PageRepository.
func (s *MemoryStore) MaskRevisions(performerID int64, revisionIDs []int64, action MaskAction, reason string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	affectedPages := map[entities.Key]bool{}
	for _, id := range revisionIDs {
		rev, ok := s.revisions[id]
		if !ok {
			return PageRevisionDoesNotExistError{RevisionID: id}
		}
		affectedPages[key(rev.PageNamespaceID, rev.PageTitle)] = true
	}

	if action == entities.MaskFully {
		for k := range affectedPages {
			visible := 0
			for _, id := range s.revisionsByPage[k] {
				hidden := s.revisions[id].Hidden
				if contains(revisionIDs, id) {
					hidden = true
				}
				if !hidden {
					visible++
				}
			}
			if visible == 0 {
				ns, title := k.NamespaceID, k.Title
				return CannotMaskLastRevisionError{NamespaceID: ns, Title: title}
			}
		}
	}

	for _, id := range revisionIDs {
		rev := s.revisions[id]
		switch action {
		case entities.MaskFully:
			rev.Hidden = true
			rev.CommentHidden = true
		case entities.MaskCommentsOnly:
			rev.CommentHidden = true
		case entities.UnmaskAll:
			rev.Hidden = false
			rev.CommentHidden = false
		case entities.UnmaskAllButComments:
			rev.Hidden = false
		}
		s.logs = append(s.logs, entities.PageRevisionMaskLog{
			LogEntry:   entities.LogEntry{ID: s.nextLogIDLocked(), Date: now, Performer: s.nameOfLocked(performerID), Reason: reason},
			RevisionID: id, Action: action,
		})
	}
	return nil
}

func contains(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Follow implements PageRepository.
func (s *MemoryStore) Follow(userID int64, anonymous bool, namespaceID int, title string, follow bool, now time.Time) (bool, error) {
	if anonymous {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fk := followKey{userID, namespaceID, title}
	if follow {
		s.follows[fk] = entities.PageFollowStatus{UserID: userID, NamespaceID: namespaceID, Title: title}
	} else {
		delete(s.follows, fk)
	}
	return true, nil
}

// FollowedPages implements PageRepository.
func (s *MemoryStore) FollowedPages(userID int64) []entities.PageFollowStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.PageFollowStatus
	for k, f := range s.follows {
		if k.userID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NamespaceID != out[j].NamespaceID {
			return out[i].NamespaceID < out[j].NamespaceID
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// Revisions implements PageRepository, oldest first.
func (s *MemoryStore) Revisions(namespaceID int, title string) ([]entities.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.revisionsByPage[key(namespaceID, title)]
	if len(ids) == 0 {
		return nil, NoRevisionsError{}
	}
	out := make([]entities.Revision, len(ids))
	for i, id := range ids {
		out[i] = *s.revisions[id]
	}
	return out, nil
}

// Revision implements PageRepository.
func (s *MemoryStore) Revision(id int64) (entities.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rev, ok := s.revisions[id]
	if !ok {
		return entities.Revision{}, PageRevisionDoesNotExistError{RevisionID: id}
	}
	return *rev, nil
}

// Next implements PageRepository.
func (s *MemoryStore) Next(rev entities.Revision, skipHidden bool) (entities.Revision, bool) {
	return s.stepLocked(rev, 1, skipHidden)
}

// Previous implements PageRepository.
func (s *MemoryStore) Previous(rev entities.Revision, skipHidden bool) (entities.Revision, bool) {
	return s.stepLocked(rev, -1, skipHidden)
}

func (s *MemoryStore) stepLocked(rev entities.Revision, dir int, skipHidden bool) (entities.Revision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.revisionsByPage[key(rev.PageNamespaceID, rev.PageTitle)]
	pos := -1
	for i, id := range ids {
		if id == rev.ID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return entities.Revision{}, false
	}
	for i := pos + dir; i >= 0 && i < len(ids); i += dir {
		candidate := s.revisions[ids[i]]
		if skipHidden && candidate.Hidden {
			continue
		}
		return *candidate, true
	}
	return entities.Revision{}, false
}

// Categories implements PageRepository.
func (s *MemoryStore) Categories(namespaceID int, title string) ([]entities.PageCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.PageCategory(nil), s.categories[key(namespaceID, title)]...), nil
}

// Links implements PageRepository.
func (s *MemoryStore) Links(namespaceID int, title string) ([]entities.PageLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.PageLink(nil), s.links[key(namespaceID, title)]...), nil
}

// ExpireProtections implements C8's delete_expired_page_protections job.
func (s *MemoryStore) ExpireProtections(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, p := range s.protections {
		if !p.IsActive(now) {
			delete(s.protections, k)
			n++
		}
	}
	return n, nil
}

// ExpireFollows implements C8's delete_expired_page_follows job.
func (s *MemoryStore) ExpireFollows(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, f := range s.follows {
		if f.EndDate != nil && !f.EndDate.After(now) {
			delete(s.follows, k)
			n++
		}
	}
	return n, nil
}

// RefreshExpiredCaches implements C8's refresh_page_caches job. render
// is called with no store lock held, since it re-enters the parser,
// which itself calls back into Get/Revisions for transclusion; holding
// the write lock across that call would deadlock against its own read
// locks. Each page's cache is installed under its own short write lock
// once render returns, matching spec §5's "small transactions" model.
func (s *MemoryStore) RefreshExpiredCaches(now time.Time, render func(namespaceID int, title, content string) (string, int64)) (int, error) {
	type stale struct {
		key     entities.Key
		ns      int
		title   string
		content string
		revID   int64
	}

	s.mu.RLock()
	var toRefresh []stale
	for k, page := range s.pages {
		if page.Deleted || !page.Exists {
			continue
		}
		latestID := s.latestRevisionIDLocked(k)
		if latestID == 0 || page.Cache.Valid(now, latestID) {
			continue
		}
		toRefresh = append(toRefresh, stale{
			key: k, ns: k.NamespaceID, title: k.Title,
			content: s.revisions[latestID].Content, revID: latestID,
		})
	}
	s.mu.RUnlock()

	n := 0
	for _, st := range toRefresh {
		html, durationMS := render(st.ns, st.title, st.content)

		s.mu.Lock()
		if page, ok := s.pages[st.key]; ok && !page.Deleted && page.Exists {
			page.Cache = &entities.ParseCache{
				HTML: html, RevisionID: st.revID, ParseDurationMS: durationMS,
				ParseDate: now, ExpiryDate: now.Add(10 * time.Minute),
				SizeBefore: len(st.content), SizeAfter: len(html),
			}
			n++
		}
		s.mu.Unlock()
	}
	return n, nil
}

func (s *MemoryStore) nextLogIDLocked() int64 {
	s.nextLogID++
	return s.nextLogID
}

func (s *MemoryStore) nameOfLocked(id int64) string {
	if p, ok := s.principals[id]; ok {
		return p.Name
	}
	return strconv.FormatInt(id, 10)
}

// --- PrincipalRepository ---

// GetPrincipal implements PrincipalRepository.
func (s *MemoryStore) GetPrincipal(id int64) (entities.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[id]
	if !ok {
		return entities.Principal{}, false
	}
	return *p, true
}

// GetByName implements PrincipalRepository.
func (s *MemoryStore) GetByName(name string) (entities.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.principalsByName[name]
	if !ok {
		return entities.Principal{}, false
	}
	return *s.principals[id], true
}

// CreateUser registers a brand-new authenticated principal, defaulting it
// into GroupUser.
func (s *MemoryStore) CreateUser(name string, now time.Time) entities.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := atomic.AddInt64(&s.nextPrincipalID, 1)
	p := &entities.Principal{
		ID: id, Name: name, CreatedAt: now,
		Groups: map[string]bool{entities.GroupUser: true},
	}
	s.principals[id] = p
	s.principalsByName[name] = id
	s.logs = append(s.logs, entities.UserCreationLog{
		LogEntry: entities.LogEntry{ID: s.nextLogIDLocked(), Date: now, Performer: name},
		Username: name,
	})
	return *p
}

// GetOrCreateAnonymous implements PrincipalRepository, materializing a
// shadow account keyed by IP address the way spec §4.3 step 3 requires.
func (s *MemoryStore) GetOrCreateAnonymous(ip string, now time.Time) entities.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.principalsByIP[ip]; ok {
		return *s.principals[id]
	}
	id := atomic.AddInt64(&s.nextPrincipalID, 1)
	p := &entities.Principal{ID: id, Name: ip, Anonymous: true, CreatedAt: now, Groups: map[string]bool{}}
	s.principals[id] = p
	s.principalsByIP[ip] = id
	s.principalsByName[ip] = id
	return *p
}

// Groups implements PrincipalRepository.
func (s *MemoryStore) Groups() map[string]entities.UserGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]entities.UserGroup, len(s.groups))
	for k, v := range s.groups {
		out[k] = v
	}
	return out
}

// UserBlock implements PrincipalRepository.
func (s *MemoryStore) UserBlock(userID int64) (entities.UserBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.userBlocks[userID]
	return b, ok
}

// IPBlock implements PrincipalRepository.
func (s *MemoryStore) IPBlock(ip string) (entities.IPBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.ipBlocks[ip]
	return b, ok
}

// BlockUser records an active block on an authenticated user.
func (s *MemoryStore) BlockUser(userID int64, performer, reason string, endDate *time.Time, allowOwnTalk, allowOwnSettings bool, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := atomic.AddInt64(&s.nextBlockID, 1)
	b := entities.UserBlock{
		ID: id, Performer: performer, Reason: reason, CreatedAt: now, EndDate: endDate,
		AllowMessagesOnOwnUserPage: allowOwnTalk, AllowEditingOwnSettings: allowOwnSettings,
	}
	s.userBlocks[userID] = b
	if p, ok := s.principals[userID]; ok {
		bc := b
		p.Block = &bc
	}
}

// BlockIP records an active block on an IP address.
func (s *MemoryStore) BlockIP(ip string, performer, reason string, endDate *time.Time, allowAccountCreation bool, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := atomic.AddInt64(&s.nextBlockID, 1)
	s.ipBlocks[ip] = entities.IPBlock{
		ID: id, IP: ip, Performer: performer, Reason: reason, CreatedAt: now, EndDate: endDate,
		AllowAccountCreation: allowAccountCreation,
	}
}

// ExpireUserBlocks implements C8's delete_expired_user_blocks job.
func (s *MemoryStore) ExpireUserBlocks(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, b := range s.userBlocks {
		if !b.IsActive(now) {
			delete(s.userBlocks, id)
			if p, ok := s.principals[id]; ok {
				p.Block = nil
			}
			n++
		}
	}
	return n, nil
}

// ExpireIPBlocks implements C8's delete_expired_ip_blocks job.
func (s *MemoryStore) ExpireIPBlocks(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for ip, b := range s.ipBlocks {
		if !b.IsActive(now) {
			delete(s.ipBlocks, ip)
			n++
		}
	}
	return n, nil
}

// MuteUser implements PrincipalRepository.
func (s *MemoryStore) MuteUser(muterID, mutedID int64, mute bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mute {
		if s.mutes[muterID] == nil {
			s.mutes[muterID] = map[int64]bool{}
		}
		s.mutes[muterID][mutedID] = true
	} else if s.mutes[muterID] != nil {
		delete(s.mutes[muterID], mutedID)
	}
}

// IsMuted implements PrincipalRepository.
func (s *MemoryStore) IsMuted(muterID, mutedID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mutes[muterID][mutedID]
}

// Logs returns every log entry recorded so far, oldest first, for tests
// and for a future audit-log special page to consume.
func (s *MemoryStore) Logs() []interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]interface{}, len(s.logs))
	copy(out, s.logs)
	return out
}

// --- StatsRepository ---

// NumberOfPages implements StatsRepository.
func (s *MemoryStore) NumberOfPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.pages {
		if p.Exists && !p.Deleted {
			n++
		}
	}
	return n
}

// NumberOfArticles implements StatsRepository: main-namespace content
// pages that are not redirects.
func (s *MemoryStore) NumberOfArticles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k, p := range s.pages {
		if k.NamespaceID == namespaces.Main && p.Exists && !p.Deleted && !p.IsRedirect() {
			n++
		}
	}
	return n
}

// NumberOfFiles implements StatsRepository.
func (s *MemoryStore) NumberOfFiles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countNamespaceLocked(namespaces.File)
}

// NumberOfEdits implements StatsRepository.
func (s *MemoryStore) NumberOfEdits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revisions)
}

// NumberOfUsers implements StatsRepository.
func (s *MemoryStore) NumberOfUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.principals {
		if !p.Anonymous {
			n++
		}
	}
	return n
}

// NumberOfActiveUsers implements StatsRepository, counting distinct
// authors with at least one revision dated at or after since.
func (s *MemoryStore) NumberOfActiveUsers(since time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := map[int64]bool{}
	for _, rev := range s.revisions {
		if !rev.Date.Before(since) {
			active[rev.AuthorID] = true
		}
	}
	return len(active)
}

// NumberInGroup implements StatsRepository.
func (s *MemoryStore) NumberInGroup(group string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.principals {
		if p.Groups[group] {
			n++
		}
	}
	return n
}

// PagesInNamespace implements StatsRepository.
func (s *MemoryStore) PagesInNamespace(namespaceID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countNamespaceLocked(namespaceID)
}

// countNamespaceLocked counts existing, non-deleted pages in a
// namespace; callers must hold mu.
func (s *MemoryStore) countNamespaceLocked(namespaceID int) int {
	n := 0
	for k, p := range s.pages {
		if k.NamespaceID == namespaceID && p.Exists && !p.Deleted {
			n++
		}
	}
	return n
}

// PagesInCategory implements StatsRepository. kind narrows the count to
// "subcats" (category-namespace members), "files" (file-namespace
// members), "pages" (everything else), or "all"/"" for every member.
func (s *MemoryStore) PagesInCategory(title, kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k, cats := range s.categories {
		page, ok := s.pages[k]
		if !ok || !page.Exists || page.Deleted {
			continue
		}
		member := false
		for _, c := range cats {
			if c.CategoryTitle == title {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		switch kind {
		case "subcats":
			if k.NamespaceID == namespaces.Category {
				n++
			}
		case "files":
			if k.NamespaceID == namespaces.File {
				n++
			}
		case "pages":
			if k.NamespaceID != namespaces.Category && k.NamespaceID != namespaces.File {
				n++
			}
		default:
			n++
		}
	}
	return n
}

// --- BrowseRepository ---

// RecentChanges implements BrowseRepository.
func (s *MemoryStore) RecentChanges(since time.Time, limit int) []entities.Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Revision
	for _, rev := range s.revisions {
		if !rev.Date.Before(since) {
			out = append(out, *rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ContributionsOf implements BrowseRepository.
func (s *MemoryStore) ContributionsOf(authorID int64, limit int) []entities.Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Revision
	for _, rev := range s.revisions {
		if rev.AuthorID == authorID {
			out = append(out, *rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Subpages implements BrowseRepository.
func (s *MemoryStore) Subpages(namespaceID int, title string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := title + "/"
	var out []string
	for k, p := range s.pages {
		if k.NamespaceID != namespaceID || !p.Exists || p.Deleted {
			continue
		}
		if strings.HasPrefix(k.Title, prefix) {
			ns, _ := namespaces.ByID(namespaceID)
			out = append(out, ns.FullTitle(k.Title))
		}
	}
	sort.Strings(out)
	return out
}

// RandomPage implements BrowseRepository, picking uniformly among
// existing, non-deleted, non-redirect pages in namespaceID.
func (s *MemoryStore) RandomPage(namespaceID int) (entities.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []*entities.Page
	for k, p := range s.pages {
		if k.NamespaceID == namespaceID && p.Exists && !p.Deleted && !p.IsRedirect() {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return entities.Page{}, false
	}
	return *candidates[rand.N(len(candidates))], true
}
