package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ottm-wiki/wiki/auth"
	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/common/entities"
	"github.com/ottm-wiki/wiki/namespaces"
)

func groups() map[string]entities.UserGroup {
	return map[string]entities.UserGroup{
		entities.GroupAll:  entities.NewUserGroup(entities.GroupAll, false),
		entities.GroupUser: entities.NewUserGroup(entities.GroupUser, true, entities.PermWikiEdit),
		entities.GroupAdministrator: entities.NewUserGroup(entities.GroupAdministrator, true,
			entities.PermWikiEdit, entities.PermWikiEditUserPages, entities.PermWikiMask),
	}
}

func mainNS() entities.Namespace {
	ns, _ := namespaces.ByID(namespaces.Main)
	return ns
}

func userNS() entities.Namespace {
	ns, _ := namespaces.ByID(namespaces.User)
	return ns
}

func TestCanEdit_AllowsEditorGroup(t *testing.T) {
	p := entities.Principal{ID: 1, Name: "alice", Groups: map[string]bool{entities.GroupUser: true}}
	err := auth.CanEdit(auth.Request{Principal: p, Namespace: mainNS(), Title: "A", Groups: groups(), Now: time.Now()})
	assert.NoError(t, err)
}

func TestCanEdit_DeniesBlockedPrincipal(t *testing.T) {
	p := entities.Principal{
		ID: 1, Name: "alice", Groups: map[string]bool{entities.GroupUser: true},
		Block: &entities.UserBlock{},
	}
	err := auth.CanEdit(auth.Request{Principal: p, Namespace: mainNS(), Title: "A", Groups: groups(), Now: time.Now()})
	assert.ErrorIs(t, err, database.BlockedError{})
}

func TestCanEdit_DeniesProtectedPageToOutsider(t *testing.T) {
	p := entities.Principal{ID: 1, Name: "alice", Groups: map[string]bool{entities.GroupUser: true}}
	prot := &entities.PageProtection{ProtectionLevel: entities.GroupAdministrator}
	err := auth.CanEdit(auth.Request{Principal: p, Namespace: mainNS(), Title: "A", Groups: groups(), Protection: prot, Now: time.Now()})
	var protErr database.ProtectedError
	assert.ErrorAs(t, err, &protErr)
}

func TestCanEdit_AllowsProtectedPageToItsLevel(t *testing.T) {
	p := entities.Principal{ID: 1, Name: "alice", Groups: map[string]bool{entities.GroupAdministrator: true}}
	prot := &entities.PageProtection{ProtectionLevel: entities.GroupAdministrator}
	err := auth.CanEdit(auth.Request{Principal: p, Namespace: mainNS(), Title: "A", Groups: groups(), Protection: prot, Now: time.Now()})
	assert.NoError(t, err)
}

func TestCanEdit_UserNamespaceOwnPage(t *testing.T) {
	p := entities.Principal{ID: 1, Name: "alice", Groups: map[string]bool{entities.GroupUser: true}}
	err := auth.CanEdit(auth.Request{Principal: p, Namespace: userNS(), Title: "alice/Sandbox", Groups: groups(), Now: time.Now()})
	assert.NoError(t, err)
}

func TestCanEdit_UserNamespaceOtherPageRequiresPermission(t *testing.T) {
	p := entities.Principal{ID: 1, Name: "alice", Groups: map[string]bool{entities.GroupUser: true}}
	err := auth.CanEdit(auth.Request{Principal: p, Namespace: userNS(), Title: "bob/Sandbox", Groups: groups(), Now: time.Now()})
	var missing database.MissingPermissionError
	assert.ErrorAs(t, err, &missing)

	admin := entities.Principal{ID: 2, Name: "admin", Groups: map[string]bool{entities.GroupAdministrator: true}}
	err = auth.CanEdit(auth.Request{Principal: admin, Namespace: userNS(), Title: "bob/Sandbox", Groups: groups(), Now: time.Now()})
	assert.NoError(t, err)
}

func TestCanRead_HiddenRevisionRequiresMask(t *testing.T) {
	hidden := true
	reader := entities.Principal{ID: 1, Groups: map[string]bool{entities.GroupUser: true}}
	masker := entities.Principal{ID: 2, Groups: map[string]bool{entities.GroupAdministrator: true}}
	assert.False(t, auth.CanRead(reader, groups(), &hidden))
	assert.True(t, auth.CanRead(masker, groups(), &hidden))
	assert.True(t, auth.CanRead(reader, groups(), nil))
}

func TestCanPost_RelaxedOnOwnTalkPage(t *testing.T) {
	p := entities.Principal{
		ID: 1, Name: "alice", Groups: map[string]bool{entities.GroupUser: true},
		Block: &entities.UserBlock{AllowMessagesOnOwnUserPage: true},
	}
	err := auth.CanPost(auth.Request{Principal: p, Namespace: userNS(), Title: "alice", Groups: groups(), Now: time.Now()})
	assert.NoError(t, err)

	err = auth.CanPost(auth.Request{Principal: p, Namespace: userNS(), Title: "bob", Groups: groups(), Now: time.Now()})
	assert.ErrorIs(t, err, database.BlockedError{})
}
