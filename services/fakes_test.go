package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"shortlink/models"
)

// fakeUrlRepo is an in-memory UrlRepository with knobs for forcing the
// collision and race paths.
type fakeUrlRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Url
	seq  int

	existsByCodeCalls int
	codeAlwaysExists  bool

	aliasChecks         int
	aliasTakenOnRecheck bool

	createErrs  []error
	createCalls int
}

func newFakeUrlRepo() *fakeUrlRepo {
	return &fakeUrlRepo{byID: make(map[string]*models.Url)}
}

func (f *fakeUrlRepo) add(u *models.Url) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		f.seq++
		u.ID = fmt.Sprintf("url-%d", f.seq)
	}
	cp := *u
	f.byID[u.ID] = &cp
}

func (f *fakeUrlRepo) FindByCodeOrAlias(identifier string) (*models.Url, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.ShortCode == identifier || (u.Alias != nil && *u.Alias == identifier) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUrlRepo) ExistsByCode(code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsByCodeCalls++
	if f.codeAlwaysExists {
		return true, nil
	}
	for _, u := range f.byID {
		if u.ShortCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUrlRepo) ExistsByAlias(alias string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aliasChecks++
	if f.aliasTakenOnRecheck && f.aliasChecks > 1 {
		return true, nil
	}
	for _, u := range f.byID {
		if u.Alias != nil && *u.Alias == alias {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUrlRepo) Create(u *models.Url) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		return err
	}
	for _, existing := range f.byID {
		if existing.ShortCode == u.ShortCode {
			return gorm.ErrDuplicatedKey
		}
		if u.Alias != nil && existing.Alias != nil && *existing.Alias == *u.Alias {
			return gorm.ErrDuplicatedKey
		}
	}
	f.seq++
	u.ID = fmt.Sprintf("url-%d", f.seq)
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUrlRepo) IncrementClickCount(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ClickCount++
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUrlRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUrlRepo) ListAll() ([]models.Url, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := make([]models.Url, 0, len(f.byID))
	for _, u := range f.byID {
		urls = append(urls, *u)
	}
	sort.Slice(urls, func(i, j int) bool { return urls[i].CreatedAt.After(urls[j].CreatedAt) })
	return urls, nil
}

func (f *fakeUrlRepo) Count() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

func (f *fakeUrlRepo) TopByClicks(limit int) ([]models.Url, error) {
	urls, _ := f.ListAll()
	sort.Slice(urls, func(i, j int) bool { return urls[i].ClickCount > urls[j].ClickCount })
	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

// fakeClickRepo keeps clicks in a slice and forwards increments to the URL
// fake, mirroring the real repository's transactional pairing.
type fakeClickRepo struct {
	mu        sync.Mutex
	urls      *fakeUrlRepo
	clicks    []models.ClickEvent
	recordErr error
}

func newFakeClickRepo(urls *fakeUrlRepo) *fakeClickRepo {
	return &fakeClickRepo{urls: urls}
}

func (f *fakeClickRepo) add(c models.ClickEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("click-%d", len(f.clicks)+1)
	}
	f.clicks = append(f.clicks, c)
}

func (f *fakeClickRepo) Record(c *models.ClickEvent) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	if err := f.urls.IncrementClickCount(c.UrlID); err != nil {
		return err
	}
	f.add(*c)
	return nil
}

func (f *fakeClickRepo) forUrl(urlID string) []models.ClickEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ClickEvent
	for _, c := range f.clicks {
		if c.UrlID == urlID {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeClickRepo) CountByUrl(urlID string) (int64, error) {
	return int64(len(f.forUrl(urlID))), nil
}

func (f *fakeClickRepo) CountUniqueIPs(urlID string) (int64, error) {
	ips := make(map[string]bool)
	for _, c := range f.forUrl(urlID) {
		ips[c.IPAddress] = true
	}
	return int64(len(ips)), nil
}

func (f *fakeClickRepo) CountAll() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.clicks)), nil
}

func (f *fakeClickRepo) CountUniqueIPsAll() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ips := make(map[string]bool)
	for _, c := range f.clicks {
		ips[c.IPAddress] = true
	}
	return int64(len(ips)), nil
}

func (f *fakeClickRepo) RecentByUrl(urlID string, limit int) ([]models.ClickEvent, error) {
	clicks := f.forUrl(urlID)
	sort.Slice(clicks, func(i, j int) bool { return clicks[i].ClickedAt.After(clicks[j].ClickedAt) })
	if len(clicks) > limit {
		clicks = clicks[:limit]
	}
	return clicks, nil
}

func (f *fakeClickRepo) RecentAll(limit int) ([]models.ClickEvent, error) {
	f.mu.Lock()
	clicks := make([]models.ClickEvent, len(f.clicks))
	copy(clicks, f.clicks)
	f.mu.Unlock()
	sort.Slice(clicks, func(i, j int) bool { return clicks[i].ClickedAt.After(clicks[j].ClickedAt) })
	if len(clicks) > limit {
		clicks = clicks[:limit]
	}
	return clicks, nil
}

func (f *fakeClickRepo) TimesSince(urlID string, since time.Time) ([]time.Time, error) {
	var times []time.Time
	for _, c := range f.forUrl(urlID) {
		if !c.ClickedAt.Before(since) {
			times = append(times, c.ClickedAt)
		}
	}
	return times, nil
}

func (f *fakeClickRepo) ReferrersByUrl(urlID string) ([]string, error) {
	var referrers []string
	for _, c := range f.forUrl(urlID) {
		if c.Referrer != nil && *c.Referrer != "" {
			referrers = append(referrers, *c.Referrer)
		}
	}
	return referrers, nil
}
