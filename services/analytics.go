package services

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"gorm.io/gorm"

	"shortlink/models"
	"shortlink/repository"
)

const (
	dailyStatsDays    = 7
	recentClicksLimit = 5
	topReferrersLimit = 5
	topUrlsLimit      = 5
)

type UrlSummary struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	Alias       *string   `json:"alias,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClickSummary is a single click as exposed by the API. The IP address is
// masked before it leaves the service.
type ClickSummary struct {
	IPAddress   string    `json:"ip_address"`
	ClickedAt   time.Time `json:"clicked_at"`
	CountryCode *string   `json:"country_code,omitempty"`
	Referrer    *string   `json:"referrer,omitempty"`
}

type DailyStat struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type ReferrerStat struct {
	Domain string `json:"domain"`
	Clicks int64  `json:"clicks"`
}

type UrlAnalytics struct {
	Url          UrlSummary     `json:"url"`
	TotalClicks  int64          `json:"total_clicks"`
	UniqueClicks int64          `json:"unique_clicks"`
	RecentClicks []ClickSummary `json:"recent_clicks"`
	DailyStats   []DailyStat    `json:"daily_stats"`
	TopReferrers []ReferrerStat `json:"top_referrers"`
}

type TopUrl struct {
	ShortCode   string  `json:"short_code"`
	Alias       *string `json:"alias,omitempty"`
	OriginalURL string  `json:"original_url"`
	Clicks      int     `json:"clicks"`
}

type GlobalStats struct {
	TotalUrls      int64    `json:"total_urls"`
	TotalClicks    int64    `json:"total_clicks"`
	UniqueVisitors int64    `json:"unique_visitors"`
	TopUrls        []TopUrl `json:"top_urls"`
}

// AnalyticsService aggregates click events into the per-URL and global views.
// Reads here are eventually consistent with the redirect hot path.
type AnalyticsService struct {
	urls    repository.UrlRepository
	clicks  repository.ClickRepository
	nowFunc func() time.Time
}

func NewAnalyticsService(urls repository.UrlRepository, clicks repository.ClickRepository) *AnalyticsService {
	return &AnalyticsService{
		urls:    urls,
		clicks:  clicks,
		nowFunc: time.Now,
	}
}

// UrlAnalytics builds the full analytics view for one short URL.
func (s *AnalyticsService) UrlAnalytics(identifier string) (*UrlAnalytics, error) {
	record, err := s.urls.FindByCodeOrAlias(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("look up short url: %w", err)
	}
	if models.IsExpired(record, s.nowFunc()) {
		return nil, ErrNotFound
	}

	totalClicks, err := s.clicks.CountByUrl(record.ID)
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	uniqueClicks, err := s.clicks.CountUniqueIPs(record.ID)
	if err != nil {
		return nil, fmt.Errorf("count unique clicks: %w", err)
	}

	recent, err := s.clicks.RecentByUrl(record.ID, recentClicksLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent clicks: %w", err)
	}

	daily, err := s.dailyStats(record.ID)
	if err != nil {
		return nil, err
	}

	referrers, err := s.topReferrers(record.ID)
	if err != nil {
		return nil, err
	}

	return &UrlAnalytics{
		Url: UrlSummary{
			ID:          record.ID,
			OriginalURL: record.OriginalURL,
			ShortCode:   record.ShortCode,
			Alias:       record.Alias,
			CreatedAt:   record.CreatedAt,
		},
		TotalClicks:  totalClicks,
		UniqueClicks: uniqueClicks,
		RecentClicks: summarizeClicks(recent),
		DailyStats:   daily,
		TopReferrers: referrers,
	}, nil
}

// GlobalStats summarizes activity across every URL.
func (s *AnalyticsService) GlobalStats() (*GlobalStats, error) {
	totalUrls, err := s.urls.Count()
	if err != nil {
		return nil, fmt.Errorf("count urls: %w", err)
	}
	totalClicks, err := s.clicks.CountAll()
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	uniqueVisitors, err := s.clicks.CountUniqueIPsAll()
	if err != nil {
		return nil, fmt.Errorf("count unique visitors: %w", err)
	}

	top, err := s.urls.TopByClicks(topUrlsLimit)
	if err != nil {
		return nil, fmt.Errorf("load top urls: %w", err)
	}
	topUrls := make([]TopUrl, 0, len(top))
	for i := range top {
		topUrls = append(topUrls, TopUrl{
			ShortCode:   top[i].ShortCode,
			Alias:       top[i].Alias,
			OriginalURL: top[i].OriginalURL,
			Clicks:      top[i].ClickCount,
		})
	}

	return &GlobalStats{
		TotalUrls:      totalUrls,
		TotalClicks:    totalClicks,
		UniqueVisitors: uniqueVisitors,
		TopUrls:        topUrls,
	}, nil
}

// RecentActivity returns the latest clicks across all URLs, newest first.
func (s *AnalyticsService) RecentActivity(limit int) ([]ClickSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	clicks, err := s.clicks.RecentAll(limit)
	if err != nil {
		return nil, fmt.Errorf("load recent activity: %w", err)
	}
	return summarizeClicks(clicks), nil
}

// dailyStats buckets the last seven days of clicks by UTC date, oldest first,
// with zero-filled gaps.
func (s *AnalyticsService) dailyStats(urlID string) ([]DailyStat, error) {
	now := s.nowFunc().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(dailyStatsDays - 1))

	times, err := s.clicks.TimesSince(urlID, start)
	if err != nil {
		return nil, fmt.Errorf("load click times: %w", err)
	}

	counts := make(map[string]int64, dailyStatsDays)
	for _, t := range times {
		counts[t.UTC().Format("2006-01-02")]++
	}

	stats := make([]DailyStat, 0, dailyStatsDays)
	for i := 0; i < dailyStatsDays; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		stats = append(stats, DailyStat{Date: day, Clicks: counts[day]})
	}
	return stats, nil
}

// topReferrers groups referrers by domain and returns the five biggest.
func (s *AnalyticsService) topReferrers(urlID string) ([]ReferrerStat, error) {
	referrers, err := s.clicks.ReferrersByUrl(urlID)
	if err != nil {
		return nil, fmt.Errorf("load referrers: %w", err)
	}

	counts := make(map[string]int64)
	for _, ref := range referrers {
		counts[referrerDomain(ref)]++
	}

	stats := make([]ReferrerStat, 0, len(counts))
	for domain, clicks := range counts {
		stats = append(stats, ReferrerStat{Domain: domain, Clicks: clicks})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Clicks != stats[j].Clicks {
			return stats[i].Clicks > stats[j].Clicks
		}
		return stats[i].Domain < stats[j].Domain
	})
	if len(stats) > topReferrersLimit {
		stats = stats[:topReferrersLimit]
	}
	return stats, nil
}

func referrerDomain(referrer string) string {
	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Host == "" {
		return "Direct"
	}
	return parsed.Host
}

func summarizeClicks(clicks []models.ClickEvent) []ClickSummary {
	summaries := make([]ClickSummary, 0, len(clicks))
	for i := range clicks {
		summaries = append(summaries, ClickSummary{
			IPAddress:   models.MaskIP(clicks[i].IPAddress),
			ClickedAt:   clicks[i].ClickedAt,
			CountryCode: clicks[i].CountryCode,
			Referrer:    clicks[i].Referrer,
		})
	}
	return summaries
}
