package models

import (
	"time"
)

type Url struct {
	ID          string       `json:"id" gorm:"type:uuid;primaryKey"`
	OriginalURL string       `json:"original_url" gorm:"type:text;not null"`
	ShortCode   string       `json:"short_code" gorm:"type:varchar(20);uniqueIndex;not null"`
	Alias       *string      `json:"alias,omitempty" gorm:"type:varchar(20);uniqueIndex"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
	ClickCount  int          `json:"click_count" gorm:"not null;default:0"`
	ClickEvents []ClickEvent `json:"click_events,omitempty" gorm:"foreignKey:UrlID;constraint:OnDelete:CASCADE"`
}

// IsExpired reports whether the record is logically expired at the given
// instant. Expired records stay in the database but every read path treats
// them as absent.
func IsExpired(u *Url, now time.Time) bool {
	return u.ExpiresAt != nil && now.After(*u.ExpiresAt)
}

// ShortIdentifier returns the identifier visitors actually use: the alias when
// one was chosen, the generated code otherwise.
func ShortIdentifier(u *Url) string {
	if u.Alias != nil && *u.Alias != "" {
		return *u.Alias
	}
	return u.ShortCode
}
