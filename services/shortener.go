package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"shortlink/config"
	"shortlink/models"
	"shortlink/repository"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// UrlResponse is the shape handed to the boundary layer. ShortURL and
// IsExpired are computed at mapping time, the record itself stays plain data.
type UrlResponse struct {
	ID          string     `json:"id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	Alias       *string    `json:"alias,omitempty"`
	ShortURL    string     `json:"short_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClickCount  int        `json:"click_count"`
	IsExpired   bool       `json:"is_expired"`
}

// ShortenerService owns short code generation, the create/info/delete/list
// operations and the redirect-with-click-recording path.
type ShortenerService struct {
	urls    repository.UrlRepository
	clicks  repository.ClickRepository
	cfg     *config.Config
	nowFunc func() time.Time
}

func NewShortenerService(urls repository.UrlRepository, clicks repository.ClickRepository, cfg *config.Config) *ShortenerService {
	return &ShortenerService{
		urls:    urls,
		clicks:  clicks,
		cfg:     cfg,
		nowFunc: time.Now,
	}
}

// GenerateShortCode returns length characters drawn uniformly from the
// 62-character alphanumeric alphabet. Collisions are the resolver's problem,
// not the generator's.
func (s *ShortenerService) GenerateShortCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("short code length must be positive")
	}

	code := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", fmt.Errorf("generate random index: %w", err)
		}
		code[i] = charset[randomIndex.Int64()]
	}
	return string(code), nil
}

// resolveUniqueCode generates candidates until one is unused or the attempt
// budget runs out. Generation and the eventual insert are not atomic; the
// database constraint is the final arbiter and Create handles the rare loss.
func (s *ShortenerService) resolveUniqueCode() (string, error) {
	for i := 0; i < s.cfg.Shortener.MaxAttempts; i++ {
		code, err := s.GenerateShortCode(s.cfg.Shortener.CodeLength)
		if err != nil {
			return "", err
		}
		taken, err := s.urls.ExistsByCode(code)
		if err != nil {
			return "", fmt.Errorf("check short code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

// Create validates input, resolves a unique code and persists the record.
func (s *ShortenerService) Create(originalURL string, alias *string, expiresAt *time.Time) (*UrlResponse, error) {
	originalURL, err := normalizeURL(originalURL)
	if err != nil {
		return nil, err
	}

	alias, err = normalizeAlias(alias)
	if err != nil {
		return nil, err
	}

	if expiresAt != nil && !expiresAt.After(s.nowFunc()) {
		return nil, ErrExpiryInPast
	}

	if alias != nil {
		taken, err := s.urls.ExistsByAlias(*alias)
		if err != nil {
			return nil, fmt.Errorf("check alias uniqueness: %w", err)
		}
		if taken {
			return nil, ErrAliasTaken
		}
	}

	code, err := s.resolveUniqueCode()
	if err != nil {
		return nil, err
	}

	record := &models.Url{
		OriginalURL: originalURL,
		ShortCode:   code,
		Alias:       alias,
		ExpiresAt:   expiresAt,
	}

	if err := s.urls.Create(record); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create short url: %w", err)
		}
		// The pre-checks passed but a concurrent create won the insert.
		// An alias conflict surfaces to the caller; a generated-code
		// conflict gets one more resolution before giving up.
		if alias != nil {
			taken, checkErr := s.urls.ExistsByAlias(*alias)
			if checkErr == nil && taken {
				return nil, ErrAliasTaken
			}
		}
		record.ID = ""
		record.ShortCode, err = s.resolveUniqueCode()
		if err != nil {
			return nil, err
		}
		if err := s.urls.Create(record); err != nil {
			return nil, fmt.Errorf("create short url after code conflict: %w", err)
		}
	}

	return s.toResponse(record), nil
}

// GetInfo returns the record behind a short code or alias without recording
// anything. Expired records are indistinguishable from missing ones.
func (s *ShortenerService) GetInfo(identifier string) (*UrlResponse, error) {
	record, err := s.findLive(identifier)
	if err != nil {
		return nil, err
	}
	return s.toResponse(record), nil
}

// ResolveAndRecord looks up a live record, records the click and returns the
// original URL. The click is recorded only for valid identifiers, before the
// caller issues the redirect.
func (s *ShortenerService) ResolveAndRecord(identifier, ipAddress string, userAgent, referrer *string) (string, error) {
	record, err := s.findLive(identifier)
	if err != nil {
		return "", err
	}

	click := &models.ClickEvent{
		UrlID:     record.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Referrer:  referrer,
		ClickedAt: s.nowFunc(),
	}
	if err := s.clicks.Record(click); err != nil {
		return "", fmt.Errorf("record click: %w", err)
	}

	return record.OriginalURL, nil
}

// Delete removes the record and, via the cascade, all of its click events.
func (s *ShortenerService) Delete(identifier string) error {
	record, err := s.findLive(identifier)
	if err != nil {
		return err
	}
	if err := s.urls.Delete(record.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete short url: %w", err)
	}
	return nil
}

// ListAll returns every record, newest first.
func (s *ShortenerService) ListAll() ([]UrlResponse, error) {
	records, err := s.urls.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list short urls: %w", err)
	}
	responses := make([]UrlResponse, 0, len(records))
	for i := range records {
		responses = append(responses, *s.toResponse(&records[i]))
	}
	return responses, nil
}

// findLive resolves an identifier to a record that is neither missing nor
// logically expired.
func (s *ShortenerService) findLive(identifier string) (*models.Url, error) {
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
	return record, nil
}

func (s *ShortenerService) toResponse(record *models.Url) *UrlResponse {
	return &UrlResponse{
		ID:          record.ID,
		OriginalURL: record.OriginalURL,
		ShortCode:   record.ShortCode,
		Alias:       record.Alias,
		ShortURL:    s.cfg.Server.BaseURL + "/" + models.ShortIdentifier(record),
		CreatedAt:   record.CreatedAt,
		ExpiresAt:   record.ExpiresAt,
		ClickCount:  record.ClickCount,
		IsExpired:   models.IsExpired(record, s.nowFunc()),
	}
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", ErrInvalidURL
	}
	return raw, nil
}

func normalizeAlias(alias *string) (*string, error) {
	if alias == nil {
		return nil, nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*alias))
	if trimmed == "" {
		return nil, nil
	}
	if !aliasPattern.MatchString(trimmed) {
		return nil, ErrInvalidAlias
	}
	return &trimmed, nil
}
