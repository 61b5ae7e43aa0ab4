package models

import (
	"strings"
	"time"
)

type ClickEvent struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	UrlID       string    `json:"url_id" gorm:"type:uuid;index;not null"`
	IPAddress   string    `json:"ip_address" gorm:"type:varchar(45);not null"`
	UserAgent   *string   `json:"user_agent,omitempty" gorm:"type:text"`
	Referrer    *string   `json:"referrer,omitempty" gorm:"type:varchar(200)"`
	CountryCode *string   `json:"country_code,omitempty" gorm:"type:varchar(10)"`
	ClickedAt   time.Time `json:"clicked_at" gorm:"index;not null"`
}

// MaskIP hides the tail of an address before it leaves the API: the last octet
// for IPv4, everything past the first four groups for IPv6. Unrecognized
// shapes are returned untouched.
func MaskIP(ip string) string {
	if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		if len(parts) > 4 {
			parts = parts[:4]
		}
		return strings.Join(parts, ":") + "::***"
	}
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return strings.Join(parts[:3], ".") + ".***"
	}
	return ip
}
