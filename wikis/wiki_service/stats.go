package wiki_service

import "time"

// statsAdapter satisfies registry.Stats over a Service's Stats field,
// answering zero for every query when the underlying repository doesn't
// implement database.StatsRepository rather than panicking mid-parse.
type statsAdapter struct {
	svc *Service
}

func (a statsAdapter) NumberOfPages() int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.NumberOfPages()
}

func (a statsAdapter) NumberOfArticles() int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.NumberOfArticles()
}

func (a statsAdapter) NumberOfFiles() int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.NumberOfFiles()
}

func (a statsAdapter) NumberOfEdits() int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.NumberOfEdits()
}

func (a statsAdapter) NumberOfUsers() int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.NumberOfUsers()
}

func (a statsAdapter) NumberOfActiveUsers(since time.Time) int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.NumberOfActiveUsers(since)
}

func (a statsAdapter) NumberInGroup(group string) int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.NumberInGroup(group)
}

func (a statsAdapter) PagesInNamespace(namespaceID int) int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.PagesInNamespace(namespaceID)
}

func (a statsAdapter) PagesInCategory(title, kind string) int {
	if a.svc.Stats == nil {
		return 0
	}
	return a.svc.Stats.PagesInCategory(title, kind)
}
