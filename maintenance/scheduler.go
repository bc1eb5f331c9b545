// Package maintenance implements C8: the background job scheduler that
// runs spec §4.8's four periodic cleanup jobs and the page-cache
// refresh job on their documented intervals, via robfig/cron/v3 the
// way brendanjerwin-simple_wiki schedules its own maintenance jobs.
package maintenance

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ottm-wiki/wiki/common/config"
	"github.com/ottm-wiki/wiki/common/database"
	"github.com/ottm-wiki/wiki/wikis/wiki_service"
)

// Clock returns the time a job run should treat as "now"; tests supply
// a fixed clock instead of time.Now so expiry comparisons are
// deterministic.
type Clock func() time.Time

// Scheduler runs C8's background jobs on a cron.Cron instance.
type Scheduler struct {
	cron       *cron.Cron
	svc        *wiki_service.Service
	principals database.PrincipalRepository
	now        Clock
}

// New builds a Scheduler. Jobs are registered but not started until
// Start is called.
func New(svc *wiki_service.Service, principals database.PrincipalRepository, now Clock) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		cron:       cron.New(),
		svc:        svc,
		principals: principals,
		now:        now,
	}
}

// job wraps a named action with logging: every run reports what it did
// or any error it hit, matching the teacher's log.Println-everywhere
// style rather than a structured logging dependency with nothing to
// demonstrate beyond Printf-equivalents.
func (s *Scheduler) job(name string, run func() (int, error)) func() {
	return func() {
		n, err := run()
		if err != nil {
			log.Printf("maintenance: %s failed: %v", name, err)
			return
		}
		log.Printf("maintenance: %s processed %d row(s)", name, n)
	}
}

// Start registers every job at its configured interval
// (config.Wiki.RefreshPageCachesInterval for the cache refresh,
// config.Wiki.DeleteExpiredRecordsInterval for the expiry jobs) and
// starts the underlying cron scheduler in its own goroutine. It never
// blocks request threads: each job's own transaction against the
// repository is small, per spec §5's concurrency model.
func (s *Scheduler) Start() error {
	refreshSpec := fmt.Sprintf("@every %s", config.Wiki.RefreshPageCachesInterval)
	expirySpec := fmt.Sprintf("@every %s", config.Wiki.DeleteExpiredRecordsInterval)
	entries := []struct {
		spec string
		name string
		run  func() (int, error)
	}{
		{refreshSpec, "refresh_page_caches", func() (int, error) {
			return s.svc.RefreshCaches(s.now())
		}},
		{expirySpec, "delete_expired_page_protections", func() (int, error) {
			return s.svc.Pages.ExpireProtections(s.now())
		}},
		{expirySpec, "delete_expired_page_follows", func() (int, error) {
			return s.svc.Pages.ExpireFollows(s.now())
		}},
		{expirySpec, "delete_expired_user_blocks", func() (int, error) {
			return s.principals.ExpireUserBlocks(s.now())
		}},
		{expirySpec, "delete_expired_ip_blocks", func() (int, error) {
			return s.principals.ExpireIPBlocks(s.now())
		}},
	}

	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, s.job(e.name, e.run)); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-flight job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunAll runs every job once, synchronously, in the order spec §4.8
// lists them. Used by tests and by an operator-triggered "run now"
// action outside the cron cadence.
func (s *Scheduler) RunAll() {
	s.job("refresh_page_caches", func() (int, error) { return s.svc.RefreshCaches(s.now()) })()
	s.job("delete_expired_page_protections", func() (int, error) { return s.svc.Pages.ExpireProtections(s.now()) })()
	s.job("delete_expired_page_follows", func() (int, error) { return s.svc.Pages.ExpireFollows(s.now()) })()
	s.job("delete_expired_user_blocks", func() (int, error) { return s.principals.ExpireUserBlocks(s.now()) })()
	s.job("delete_expired_ip_blocks", func() (int, error) { return s.principals.ExpireIPBlocks(s.now()) })()
}
