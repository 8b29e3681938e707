package services

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
	"paisa/internal/pagination"
)

// patternMaxLen caps stored patterns so one long narration does not become an
// overly specific rule.
const patternMaxLen = 50

var digitsRe = regexp.MustCompile(`\d+`)

// NormalizePattern reduces a transaction description to its learnable core:
// digits stripped (reference numbers, dates, amounts embedded in narrations),
// whitespace collapsed, truncated to 50 runes, lowercased for matching.
func NormalizePattern(description string) string {
	p := digitsRe.ReplaceAllString(description, "")
	p = strings.Join(strings.Fields(p), " ")
	p = strings.ToLower(p)
	runes := []rune(p)
	if len(runes) > patternMaxLen {
		p = string(runes[:patternMaxLen])
	}
	return strings.TrimSpace(p)
}

// autotagService matches transaction descriptions against learned patterns.
type autotagService struct {
	db *gorm.DB
}

// NewAutotagService creates a new AutotagServicer.
func NewAutotagService(db *gorm.DB) AutotagServicer {
	return &autotagService{db: db}
}

// Match returns the first learned pattern contained in the description,
// oldest pattern first, or nil when nothing matches. Matching is a plain
// case-insensitive substring check.
func (s *autotagService) Match(description string) (*models.TagPattern, error) {
	normalized := NormalizePattern(description)
	if normalized == "" {
		return nil, nil
	}

	var patterns []models.TagPattern
	if err := s.db.Order("created_at ASC").Find(&patterns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range patterns {
		if patterns[i].Pattern == "" {
			continue
		}
		if strings.Contains(normalized, patterns[i].Pattern) {
			return &patterns[i], nil
		}
	}
	return nil, nil
}

// Learn records or updates the pattern for a description. Called whenever the
// user tags a transaction by hand, so the next similar description tags
// itself. A nil category and nil payee clears nothing; at least one must be
// set for the rule to be worth keeping.
func (s *autotagService) Learn(description string, categoryID, payeeAccountID *string) error {
	if categoryID == nil && payeeAccountID == nil {
		return nil
	}

	normalized := NormalizePattern(description)
	if normalized == "" {
		return nil
	}

	var pattern models.TagPattern
	err := s.db.Where("pattern = ?", normalized).First(&pattern).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pattern = models.TagPattern{
			Pattern:        normalized,
			CategoryID:     categoryID,
			PayeeAccountID: payeeAccountID,
		}
		if err := s.db.Create(&pattern).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{}
	if categoryID != nil {
		updates["category_id"] = *categoryID
	}
	if payeeAccountID != nil {
		updates["payee_account_id"] = *payeeAccountID
	}
	if err := s.db.Model(&pattern).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetPatterns lists learned patterns, newest first.
func (s *autotagService) GetPatterns(page pagination.PageRequest) (*pagination.PageResponse[models.TagPattern], error) {
	page.Defaults()

	var total int64
	if err := s.db.Model(&models.TagPattern{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var patterns []models.TagPattern
	if err := s.db.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&patterns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(patterns, page.Page, page.PageSize, total)
	return &resp, nil
}

// DeletePattern removes a learned pattern.
func (s *autotagService) DeletePattern(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.TagPattern{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTagPatternNotFound
	}
	return nil
}
