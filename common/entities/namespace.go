package entities

// Namespace partitions the page title space. The set of namespaces is
// closed and defined by the namespaces package's registry; this type only
// describes the shape of one entry.
type Namespace struct {
	ID             int
	Name           string
	IsContent      bool
	AllowsSubpages bool
	IsEditable     bool
	PermsRequired  []Permission
}

// FullTitle returns "<name>:<title>", or bare title for the Main namespace.
func (n Namespace) FullTitle(title string) string {
	if n.Name == "" {
		return title
	}
	return n.Name + ":" + title
}

// CanUserEdit reports whether a principal holding the given permissions may
// edit pages in this namespace at all (before any per-page checks).
func (n Namespace) CanUserEdit(has func(Permission) bool) bool {
	if !n.IsEditable {
		return false
	}
	for _, p := range n.PermsRequired {
		if !has(p) {
			return false
		}
	}
	return true
}
