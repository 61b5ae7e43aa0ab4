package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shortlink/models"
)

// UrlRepository is the data-access contract for short URL records. The
// service layer depends on this interface so tests can swap in fakes.
type UrlRepository interface {
	FindByCodeOrAlias(identifier string) (*models.Url, error)
	ExistsByCode(code string) (bool, error)
	ExistsByAlias(alias string) (bool, error)
	// Create inserts the record. Uniqueness of short_code and alias is
	// enforced by the database; a collision comes back as
	// gorm.ErrDuplicatedKey even when a pre-check passed.
	Create(url *models.Url) error
	// IncrementClickCount bumps click_count by one in a single SQL update.
	// Concurrent increments on the same row never lose updates.
	IncrementClickCount(id string) error
	// Delete removes the record; click events go with it via the FK cascade.
	Delete(id string) error
	ListAll() ([]models.Url, error)
	Count() (int64, error)
	TopByClicks(limit int) ([]models.Url, error)
}

type GormUrlRepository struct {
	db *gorm.DB
}

func NewUrlRepository(db *gorm.DB) *GormUrlRepository {
	return &GormUrlRepository{db: db}
}

func (r *GormUrlRepository) FindByCodeOrAlias(identifier string) (*models.Url, error) {
	var url models.Url
	err := r.db.Where("short_code = ? OR alias = ?", identifier, identifier).First(&url).Error
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (r *GormUrlRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Url{}).Where("short_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *GormUrlRepository) ExistsByAlias(alias string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Url{}).Where("alias = ?", alias).Count(&count).Error
	return count > 0, err
}

func (r *GormUrlRepository) Create(url *models.Url) error {
	if url.ID == "" {
		url.ID = uuid.NewString()
	}
	return r.db.Create(url).Error
}

func (r *GormUrlRepository) IncrementClickCount(id string) error {
	return incrementClickCount(r.db, id)
}

func (r *GormUrlRepository) Delete(id string) error {
	res := r.db.Delete(&models.Url{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormUrlRepository) ListAll() ([]models.Url, error) {
	var urls []models.Url
	err := r.db.Order("created_at desc").Find(&urls).Error
	return urls, err
}

func (r *GormUrlRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Url{}).Count(&count).Error
	return count, err
}

func (r *GormUrlRepository) TopByClicks(limit int) ([]models.Url, error) {
	var urls []models.Url
	err := r.db.Order("click_count desc").Limit(limit).Find(&urls).Error
	return urls, err
}

// incrementClickCount is shared with the click repository, which runs it
// inside the same transaction as the event insert.
func incrementClickCount(tx *gorm.DB, id string) error {
	res := tx.Model(&models.Url{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"click_count": gorm.Expr("click_count + ?", 1),
		"updated_at":  time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
