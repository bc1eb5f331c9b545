package wiki_service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/common/entities"
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

func regularUser(store *database.MemoryStore) entities.Principal {
	return store.CreateUser("Writer", now)
}

func anonymous() entities.Principal {
	return entities.Principal{Name: "203.0.113.5", Anonymous: true}
}

func mustEdit(t *testing.T, svc *wiki_service.Service, principal entities.Principal, title, content string) entities.Revision {
	t.Helper()
	rev, err := svc.Edit(principal, title, database.EditRequest{Content: content, SnapshotRevisionID: 0}, now)
	require.NoError(t, err)
	return rev
}

func TestEdit_CreatesPageAndRenders(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	user := regularUser(store)

	rev := mustEdit(t, svc, user, "Some Page", "Hello world")
	assert.True(t, rev.PageCreation)
	assert.Equal(t, "Hello world", rev.Content)

	result, err := svc.RenderedPage(user, "Some Page", now)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "Hello world")
}

func TestEdit_RejectsConcurrentEdit(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	user := regularUser(store)
	mustEdit(t, svc, user, "Some Page", "v1")

	_, err := svc.Edit(user, "Some Page", database.EditRequest{Content: "v2", SnapshotRevisionID: 0}, now)
	var concurrent database.ConcurrentEditError
	assert.ErrorAs(t, err, &concurrent)
}

func TestEdit_MaterializesAnonymousByIP(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	anon := anonymous()

	rev, err := svc.Edit(anon, "Some Page", database.EditRequest{Content: "anon edit"}, now)
	require.NoError(t, err)
	assert.Equal(t, anon.Name, rev.Author)

	principal, ok := store.GetByName(anon.Name)
	require.True(t, ok)
	assert.True(t, principal.Anonymous)
}

func TestEdit_EnforcesProtection(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Locked Page", "v1")
	require.NoError(t, svc.Protect(admin, "Locked Page", entities.GroupAdministrator, false, "hot topic", nil, now))

	writer := regularUser(store)
	_, err := svc.Edit(writer, "Locked Page", database.EditRequest{Content: "vandalism", SnapshotRevisionID: 1}, now)
	var protected database.ProtectedError
	assert.ErrorAs(t, err, &protected)
}

func TestRenderedPage_FollowsRedirect(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Target", "the real content")
	mustEdit(t, svc, admin, "Source", "@REDIRECT[[Target]]")

	result, err := svc.RenderedPage(admin, "Source", now)
	require.NoError(t, err)
	assert.Equal(t, "Target", result.Title)
	assert.Equal(t, "Source", result.RedirectsFrom)
	assert.Contains(t, result.HTML, "the real content")
}

func TestRenderedPage_HiddenRevisionRequiresMaskPermission(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	admin := adminPrincipal(store)
	rev := mustEdit(t, svc, admin, "Some Page", "secret detail")
	require.NoError(t, store.MaskRevisions(admin.ID, []int64{rev.ID}, entities.MaskFully, "privacy", now))

	writer := regularUser(store)
	_, err := svc.RenderedPage(writer, "Some Page", now)
	var missing database.MissingPermissionError
	assert.ErrorAs(t, err, &missing)
}

func TestDelete_RequiresPermission(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Some Page", "content")

	writer := regularUser(store)
	err := svc.Delete(writer, "Some Page", "no reason", now)
	var missing database.MissingPermissionError
	assert.ErrorAs(t, err, &missing)

	require.NoError(t, svc.Delete(admin, "Some Page", "cleanup", now))
	page, err := store.Get(0, "Some Page")
	require.NoError(t, err)
	assert.True(t, page.Deleted)
}

func TestRename_LeavesRedirect(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	admin := adminPrincipal(store)
	mustEdit(t, svc, admin, "Old Title", "content")

	require.NoError(t, svc.Rename(admin, "Old Title", "New Title", true, "cleanup", now))

	result, err := svc.RenderedPage(admin, "Old Title", now)
	require.NoError(t, err)
	assert.Equal(t, "New Title", result.Title)
}

func TestFollow_NoopForAnonymous(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	mustEdit(t, svc, adminPrincipal(store), "Some Page", "content")

	followed, err := svc.Follow(anonymous(), "Some Page", true, now)
	require.NoError(t, err)
	assert.False(t, followed)
}

func TestMaskRevisions_RejectsLastVisibleRevision(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	admin := adminPrincipal(store)
	rev := mustEdit(t, svc, admin, "Some Page", "only revision")

	err := svc.MaskRevisions(admin, []int64{rev.ID}, entities.MaskFully, "reason", now)
	var cannotMask database.CannotMaskLastRevisionError
	assert.ErrorAs(t, err, &cannotMask)
}
