package maintenance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/maintenance"
	"github.com/ottm-wiki/wiki/wikis/wiki_service"
)

var start = time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)

func newStore() *database.MemoryStore {
	return database.NewMemoryStore()
}

func TestRunAll_RefreshesExpiredCache(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	admin := store.CreateUser("Admin", start)
	admin.Groups[entities.GroupAdministrator] = true

	_, err := svc.Edit(admin, "Some Page", database.EditRequest{Content: "Hello world"}, start)
	require.NoError(t, err)

	later := start.Add(20 * time.Minute)
	clockValue := later
	sched := maintenance.New(svc, store, func() time.Time { return clockValue })
	sched.RunAll()

	result, err := svc.RenderedPage(admin, "Some Page", later)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "Hello world")
}

func TestRunAll_ExpiresProtections(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	admin := store.CreateUser("Admin", start)
	admin.Groups[entities.GroupAdministrator] = true
	_, err := svc.Edit(admin, "Some Page", database.EditRequest{Content: "v1"}, start)
	require.NoError(t, err)

	endDate := start.Add(time.Hour)
	require.NoError(t, svc.Protect(admin, "Some Page", entities.GroupAdministrator, false, "temp", &endDate, start))

	later := start.Add(2 * time.Hour)
	sched := maintenance.New(svc, store, func() time.Time { return later })
	sched.RunAll()

	_, ok := store.Protection(0, "Some Page")
	assert.False(t, ok)
}

func TestRunAll_ExpiresUserBlocks(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	writer := store.CreateUser("Writer", start)

	endDate := start.Add(time.Hour)
	store.BlockUser(writer.ID, "Admin", "misbehavior", &endDate, true, true, start)

	later := start.Add(2 * time.Hour)
	sched := maintenance.New(svc, store, func() time.Time { return later })
	sched.RunAll()

	_, blocked := store.UserBlock(writer.ID)
	assert.False(t, blocked)
}

func TestNew_DefaultsClockToNow(t *testing.T) {
	store := newStore()
	svc := wiki_service.New(store, store)
	sched := maintenance.New(svc, store, nil)
	assert.NotPanics(t, func() { sched.RunAll() })
}
