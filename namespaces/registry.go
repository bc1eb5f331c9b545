// Package namespaces defines the closed, process-wide set of wiki
// namespaces (C2) and the read-only registry used to look them up by id
// or by name/alias. Mirrors the static-registration pattern the teacher
// uses for its role/permission tables, built once at init time rather
// than discovered at import time.
package namespaces

import (
	"strings"

	"github.com/ottm-wiki/wiki/common/entities"
)

// Separator splits a raw title into its namespace prefix and page name.
const Separator = ":"

// Namespace ids, matching spec.md §4.2.
const (
	Special   = -1
	Main      = 0
	Category  = 1
	Wiki      = 2
	Help      = 3
	User      = 4
	Template  = 10
	Module    = 11
	Interface = 12
	File      = 13
)

var (
	byID    = map[int]entities.Namespace{}
	byName  = map[string]entities.Namespace{} // lower-cased canonical name or alias
	ordered []entities.Namespace
)

func register(ns entities.Namespace, aliases ...string) {
	byID[ns.ID] = ns
	byName[strings.ToLower(ns.Name)] = ns
	for _, a := range aliases {
		byName[strings.ToLower(a)] = ns
	}
	ordered = append(ordered, ns)
}

func init() {
	register(entities.Namespace{ID: Special, Name: "Special", IsEditable: false, AllowsSubpages: false})
	register(entities.Namespace{ID: Main, Name: "", IsContent: true, AllowsSubpages: false, IsEditable: true})
	register(entities.Namespace{ID: Category, Name: "Category", AllowsSubpages: false, IsEditable: true})
	register(entities.Namespace{ID: Wiki, Name: "Wiki", AllowsSubpages: true, IsEditable: true})
	register(entities.Namespace{ID: Help, Name: "Help", AllowsSubpages: true, IsEditable: true})
	register(entities.Namespace{ID: User, Name: "User", AllowsSubpages: true, IsEditable: true})
	register(entities.Namespace{ID: Template, Name: "Template", AllowsSubpages: true, IsEditable: true})
	register(entities.Namespace{ID: Module, Name: "Module", AllowsSubpages: true, IsEditable: true})
	register(entities.Namespace{
		ID: Interface, Name: "Interface", AllowsSubpages: true, IsEditable: true,
		PermsRequired: []entities.Permission{entities.PermWikiEditInterface},
	}, "UI")
	register(entities.Namespace{ID: File, Name: "File", AllowsSubpages: false, IsEditable: true})
}

// ByID looks up a namespace by its integer id.
func ByID(id int) (entities.Namespace, bool) {
	ns, ok := byID[id]
	return ns, ok
}

// ByName looks up a namespace by its canonical name or a known alias,
// case-insensitively.
func ByName(name string) (entities.Namespace, bool) {
	ns, ok := byName[strings.ToLower(name)]
	return ns, ok
}

// All returns every registered namespace, in registration order.
func All() []entities.Namespace {
	out := make([]entities.Namespace, len(ordered))
	copy(out, ordered)
	return out
}

// MustByID panics if id is not a registered namespace; used at
// start-up/config boundaries where an unknown id is a programming error.
func MustByID(id int) entities.Namespace {
	ns, ok := ByID(id)
	if !ok {
		panic("namespaces: unknown namespace id")
	}
	return ns
}
