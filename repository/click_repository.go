package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shortlink/models"
)

// ClickRepository is the data-access contract for click events and the
// aggregations built on top of them.
type ClickRepository interface {
	// Record inserts the event and increments the parent URL's click count
	// in one transaction. Neither write survives without the other.
	Record(click *models.ClickEvent) error
	CountByUrl(urlID string) (int64, error)
	CountUniqueIPs(urlID string) (int64, error)
	CountAll() (int64, error)
	CountUniqueIPsAll() (int64, error)
	RecentByUrl(urlID string, limit int) ([]models.ClickEvent, error)
	RecentAll(limit int) ([]models.ClickEvent, error)
	// TimesSince returns the click timestamps for a URL from the cutoff on;
	// callers bucket them into daily counts.
	TimesSince(urlID string, since time.Time) ([]time.Time, error)
	// ReferrersByUrl returns the raw referrer of every click that carried one.
	ReferrersByUrl(urlID string) ([]string, error)
}

type GormClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

func (r *GormClickRepository) Record(click *models.ClickEvent) error {
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(click).Error; err != nil {
			return err
		}
		return incrementClickCount(tx, click.UrlID)
	})
}

func (r *GormClickRepository) CountByUrl(urlID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ClickEvent{}).Where("url_id = ?", urlID).Count(&count).Error
	return count, err
}

func (r *GormClickRepository) CountUniqueIPs(urlID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ClickEvent{}).Where("url_id = ?", urlID).
		Distinct("ip_address").Count(&count).Error
	return count, err
}

func (r *GormClickRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.ClickEvent{}).Count(&count).Error
	return count, err
}

func (r *GormClickRepository) CountUniqueIPsAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.ClickEvent{}).Distinct("ip_address").Count(&count).Error
	return count, err
}

func (r *GormClickRepository) RecentByUrl(urlID string, limit int) ([]models.ClickEvent, error) {
	var clicks []models.ClickEvent
	err := r.db.Where("url_id = ?", urlID).Order("clicked_at desc").Limit(limit).Find(&clicks).Error
	return clicks, err
}

func (r *GormClickRepository) RecentAll(limit int) ([]models.ClickEvent, error) {
	var clicks []models.ClickEvent
	err := r.db.Order("clicked_at desc").Limit(limit).Find(&clicks).Error
	return clicks, err
}

func (r *GormClickRepository) TimesSince(urlID string, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.Model(&models.ClickEvent{}).
		Where("url_id = ? AND clicked_at >= ?", urlID, since).
		Pluck("clicked_at", &times).Error
	return times, err
}

func (r *GormClickRepository) ReferrersByUrl(urlID string) ([]string, error) {
	var referrers []string
	err := r.db.Model(&models.ClickEvent{}).
		Where("url_id = ? AND referrer IS NOT NULL AND referrer <> ''", urlID).
		Pluck("referrer", &referrers).Error
	return referrers, err
}
