package database_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/common/entities"
)

func newStoreWithUser(t *testing.T, name string) (*database.MemoryStore, entities.Principal) {
	t.Helper()
	s := database.NewMemoryStore()
	u := s.CreateUser(name, time.Now())
	return s, u
}

func TestEdit_CreatesPageAndRevision(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()

	rev, err := s.Edit(u.ID, database.EditRequest{
		NamespaceID: 0, Title: "Main Page", Content: "Hello", Comment: "init",
	}, now)
	require.NoError(t, err)
	assert.True(t, rev.PageCreation)

	page, err := s.Get(0, "Main Page")
	require.NoError(t, err)
	assert.True(t, page.Exists)
	assert.False(t, page.IsRedirect())
}

func TestEdit_ConcurrentEditRejected(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()

	_, err := s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "P", Content: "v1"}, now)
	require.NoError(t, err)

	// Both callers observed SnapshotRevisionID == 0 (page did not exist).
	_, err = s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "P", Content: "v2", SnapshotRevisionID: 0}, now)
	assert.ErrorIs(t, err, database.ConcurrentEditError{})
}

func TestEdit_RedirectDetection(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()
	_, err := s.Edit(u.ID, database.EditRequest{
		NamespaceID: 0, Title: "A", Content: "  @REDIRECT[[B]]  ",
	}, now)
	require.NoError(t, err)

	page, _ := s.Get(0, "A")
	require.NotNil(t, page.RedirectsTo)
	assert.Equal(t, "B", page.RedirectsTo.Title)
}

func TestRename_FailsOnExistingTarget(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()
	_, err := s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "A", Content: "a"}, now)
	require.NoError(t, err)
	_, err = s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "B", Content: "b"}, now)
	require.NoError(t, err)

	err = s.Rename(u.ID, 0, "A", "B", false, "dup", now)
	assert.ErrorIs(t, err, database.TitleAlreadyExistsError{NamespaceID: 0, Title: "B"})
}

func TestRename_LeavesRedirect(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()
	_, err := s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "A", Content: "a"}, now)
	require.NoError(t, err)

	require.NoError(t, s.Rename(u.ID, 0, "A", "A2", true, "move", now))

	moved, _ := s.Get(0, "A2")
	assert.True(t, moved.Exists)
	oldPage, _ := s.Get(0, "A")
	require.NotNil(t, oldPage.RedirectsTo)
	assert.Equal(t, "A2", oldPage.RedirectsTo.Title)
}

func TestMaskRevisions_RejectsMaskingLastVisible(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()
	rev, err := s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "A", Content: "a"}, now)
	require.NoError(t, err)

	err = s.MaskRevisions(u.ID, []int64{rev.ID}, entities.MaskFully, "bad", now)
	assert.ErrorIs(t, err, database.CannotMaskLastRevisionError{NamespaceID: 0, Title: "A"})
}

func TestMaskRevisions_AllowsWhenAnotherRevisionRemainsVisible(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()
	rev1, err := s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "A", Content: "a"}, now)
	require.NoError(t, err)
	_, err = s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "A", Content: "a2", SnapshotRevisionID: rev1.ID}, now.Add(time.Second))
	require.NoError(t, err)

	err = s.MaskRevisions(u.ID, []int64{rev1.ID}, entities.MaskFully, "old", now)
	assert.NoError(t, err)

	masked, err := s.Revision(rev1.ID)
	require.NoError(t, err)
	assert.True(t, masked.Hidden)
}

func TestFollow_IdempotentAndNoOpForAnonymous(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()

	ok, err := s.Follow(u.ID, false, 0, "A", true, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Follow(u.ID, false, 0, "A", true, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Follow(999, true, 0, "A", true, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpireProtections(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()
	past := now.Add(-time.Hour)
	require.NoError(t, s.Protect(u.ID, 0, "A", entities.GroupAdministrator, false, "spam", &past, now))

	n, err := s.ExpireProtections(now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok := s.Protection(0, "A")
	assert.False(t, ok)
}

func TestNextPrevious_SkipsHidden(t *testing.T) {
	s, u := newStoreWithUser(t, "alice")
	now := time.Now()
	rev1, err := s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "A", Content: "a"}, now)
	require.NoError(t, err)
	rev2, err := s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "A", Content: "a2", SnapshotRevisionID: rev1.ID}, now.Add(time.Second))
	require.NoError(t, err)
	rev3, err := s.Edit(u.ID, database.EditRequest{NamespaceID: 0, Title: "A", Content: "a3", SnapshotRevisionID: rev2.ID}, now.Add(2*time.Second))
	require.NoError(t, err)

	require.NoError(t, s.MaskRevisions(u.ID, []int64{rev2.ID}, entities.MaskFully, "x", now))

	next, ok := s.Next(rev1, true)
	require.True(t, ok)
	assert.Equal(t, rev3.ID, next.ID)

	prev, ok := s.Previous(rev3, true)
	require.True(t, ok)
	assert.Equal(t, rev1.ID, prev.ID)
}
