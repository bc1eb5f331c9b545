package special_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/special"
	"github.com/ottm-wiki/wiki/wikis/wiki_service"
)

var now = time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)

func newStore() *database.MemoryStore {
	return database.NewMemoryStore()
}

func adminPrincipal(store *database.MemoryStore) entities.Principal {
	p := store.CreateUser("Admin", now)
	p.Groups[entities.GroupAdministrator] = true
	return p
}

func regularUser(store *database.MemoryStore, name string) entities.Principal {
	return store.CreateUser(name, now)
}

func mustEdit(t *testing.T, svc *wiki_service.Service, principal entities.Principal, title, content string) entities.Revision {
	t.Helper()
	rev, err := svc.Edit(principal, title, database.EditRequest{Content: content, SnapshotRevisionID: 0}, now)
	require.NoError(t, err)
	return rev
}

func newDispatcher(store *database.MemoryStore) (*wiki_service.Service, *special.Dispatcher) {
	svc := wiki_service.New(store, store)
	return svc, special.NewWikiDispatcher(svc)
}

func TestDispatch_UnknownPage(t *testing.T) {
	store := newStore()
	_, d := newDispatcher(store)
	groups := store.Groups()

	_, _, err := d.Dispatch(entities.Principal{}, groups, []string{"NotARealPage"}, nil, now)
	var unknown special.UnknownSpecialPageError
	assert.ErrorAs(t, err, &unknown)
}

func TestDispatch_EmptySegments(t *testing.T) {
	store := newStore()
	_, d := newDispatcher(store)
	groups := store.Groups()

	_, _, err := d.Dispatch(entities.Principal{}, groups, nil, nil, now)
	var unknown special.UnknownSpecialPageError
	assert.ErrorAs(t, err, &unknown)
}

func TestDispatch_DeletePage_RejectsUnprivilegedPrincipal(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	writer := regularUser(store, "Writer")
	mustEdit(t, svc, adminPrincipal(store), "Some Page", "content")

	_, _, err := d.Dispatch(writer, groups, []string{"DeletePage", "Some Page"}, map[string]string{"reason": "x"}, now)
	var missing database.MissingPermissionError
	assert.ErrorAs(t, err, &missing)
}

func TestDispatch_DeletePage_Succeeds(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Some Page", "content")

	_, redirect, err := d.Dispatch(admin, groups, []string{"DeletePage", "Some Page"}, map[string]string{"reason": "cleanup"}, now)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.Equal(t, "true", redirect.Args["done"])

	page, err := store.Get(0, "Some Page")
	require.NoError(t, err)
	assert.True(t, page.Deleted)
}

func TestDispatch_RenamePage_LeavesRedirect(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Old Title", "content")

	_, redirect, err := d.Dispatch(admin, groups, []string{"RenamePage", "Old Title"}, map[string]string{
		"new_title":      "New Title",
		"leave_redirect": "true",
		"reason":         "cleanup",
	}, now)
	require.NoError(t, err)
	require.NotNil(t, redirect)

	result, err := svc.RenderedPage(admin, "Old Title", now)
	require.NoError(t, err)
	assert.Equal(t, "New Title", result.Title)
}

func TestDispatch_ProtectPage_Succeeds(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Some Page", "content")

	_, _, err := d.Dispatch(admin, groups, []string{"ProtectPage", "Some Page"}, map[string]string{
		"protection_level": entities.GroupAdministrator,
		"reason":           "hot topic",
	}, now)
	require.NoError(t, err)

	writer := regularUser(store, "Writer")
	_, err = svc.Edit(writer, "Some Page", database.EditRequest{Content: "vandalism", SnapshotRevisionID: 1}, now)
	var protected database.ProtectedError
	assert.ErrorAs(t, err, &protected)
}

func TestDispatch_MaskRevisions_RejectsLastVisible(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	admin := adminPrincipal(store)
	rev := mustEdit(t, svc, admin, "Some Page", "only revision")

	_, _, err := d.Dispatch(admin, groups, []string{"MaskRevisions", strconv.FormatInt(rev.ID, 10)}, map[string]string{
		"action": string(entities.MaskFully),
		"reason": "privacy",
	}, now)
	var cannotMask database.CannotMaskLastRevisionError
	assert.ErrorAs(t, err, &cannotMask)
}

func TestDispatch_RandomPage_RedirectsToExistingArticle(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Only Page", "content")

	_, redirect, err := d.Dispatch(admin, groups, []string{"RandomPage"}, nil, now)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.Equal(t, "Only Page", redirect.PageTitle)
}

func TestDispatch_RandomPage_NoPagesError(t *testing.T) {
	store := newStore()
	_, d := newDispatcher(store)
	groups := store.Groups()

	_, _, err := d.Dispatch(entities.Principal{}, groups, []string{"RandomPage"}, nil, now)
	var noPages special.NoPagesError
	assert.ErrorAs(t, err, &noPages)
}

func TestDispatch_RecentChanges_ListsRevisions(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Page One", "v1")
	mustEdit(t, svc, admin, "Page Two", "v1")

	result, _, err := d.Dispatch(admin, groups, []string{"RecentChanges"}, nil, now)
	require.NoError(t, err)
	revisions, ok := result["revisions"].([]entities.Revision)
	require.True(t, ok)
	assert.Len(t, revisions, 2)
}

func TestDispatch_Contributions_UnknownUser(t *testing.T) {
	store := newStore()
	_, d := newDispatcher(store)
	groups := store.Groups()

	_, _, err := d.Dispatch(entities.Principal{}, groups, []string{"Contributions", "Ghost"}, nil, now)
	var missing special.UserDoesNotExistError
	assert.ErrorAs(t, err, &missing)
}

func TestDispatch_Subpages_ListsDescendants(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Parent", "v1")
	mustEdit(t, svc, admin, "Parent/Child", "v1")

	result, _, err := d.Dispatch(admin, groups, []string{"Subpages", "Parent"}, nil, now)
	require.NoError(t, err)
	assert.Contains(t, result["subpages"].([]string), "Parent/Child")
}

func TestDispatch_Mute_TogglesIsMuted(t *testing.T) {
	store := newStore()
	_, d := newDispatcher(store)
	groups := store.Groups()
	muter := regularUser(store, "Muter")
	muted := regularUser(store, "Muted")

	_, redirect, err := d.Dispatch(muter, groups, []string{"Mute", "Muted"}, map[string]string{"mute": "true"}, now)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.True(t, store.IsMuted(muter.ID, muted.ID))
}

func TestDispatch_Mute_RejectsAnonymous(t *testing.T) {
	store := newStore()
	_, d := newDispatcher(store)
	groups := store.Groups()
	regularUser(store, "Target")

	_, _, err := d.Dispatch(entities.Principal{Anonymous: true}, groups, []string{"Mute", "Target"}, map[string]string{"mute": "true"}, now)
	var notAuth special.NotAuthenticatedError
	assert.ErrorAs(t, err, &notAuth)
}

func TestDispatch_SendEmail_ValidatesWithoutDelivering(t *testing.T) {
	store := newStore()
	_, d := newDispatcher(store)
	groups := store.Groups()
	sender := regularUser(store, "Sender")
	regularUser(store, "Recipient")

	result, _, err := d.Dispatch(sender, groups, []string{"SendEmail"}, map[string]string{
		"username": "Recipient",
		"subject":  "",
		"content":  "",
	}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, result["error"])
}

func TestDispatch_EditFollowList_RawClear(t *testing.T) {
	store := newStore()
	svc, d := newDispatcher(store)
	groups := store.Groups()
	user := regularUser(store, "Follower")
	mustEdit(t, svc, adminPrincipal(store), "Some Page", "content")
	_, err := svc.Follow(user, "Some Page", true, now)
	require.NoError(t, err)

	result, _, err := d.Dispatch(user, groups, []string{"EditFollowList", "raw"}, nil, now)
	require.NoError(t, err)
	assert.Contains(t, result["page_names"], "Some Page")

	_, redirect, err := d.Dispatch(user, groups, []string{"EditFollowList", "clear"}, map[string]string{"confirm": "true"}, now)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.Empty(t, store.FollowedPages(user.ID))
}

func TestDispatch_SpecialPages_FiltersByPermission(t *testing.T) {
	store := newStore()
	_, d := newDispatcher(store)
	groups := store.Groups()
	writer := regularUser(store, "Writer")

	result, _, err := d.Dispatch(writer, groups, []string{"SpecialPages"}, nil, now)
	require.NoError(t, err)
	pages, ok := result["pages"].([]string)
	require.True(t, ok)
	assert.Contains(t, pages, "RandomPage")
	assert.NotContains(t, pages, "DeletePage")
}
