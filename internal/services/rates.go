package services

import (
	"errors"

	"gorm.io/gorm"
)

// ErrInvalidChain signals a client/project/activity triple that does not
// form a valid ownership chain.
var ErrInvalidChain = errors.New("inconsistent client/project/activity relation")

// RateService resolves the effective hourly rate for a billing triple.
type RateService struct {
	db *gorm.DB
}

func NewRateService(db *gorm.DB) *RateService { return &RateService{db: db} }

// ResolveEffectiveRate returns the first non-zero rate in the override chain
// activity -> project -> client; 0 when all three are zero. The triple must
// form a valid chain or ErrInvalidChain is returned.
func (s *RateService) ResolveEffectiveRate(clientID, projectID, activityID uint) (float64, error) {
	var row struct {
		ClientRate   float64
		ProjectRate  float64
		ActivityRate float64
	}
	res := s.db.Table("activities a").
		Select("c.hourly_rate AS client_rate, p.hourly_rate AS project_rate, a.hourly_rate AS activity_rate").
		Joins("JOIN projects p ON p.id = a.project_id").
		Joins("JOIN clients c ON c.id = p.client_id").
		Where("c.id = ? AND p.id = ? AND a.id = ?", clientID, projectID, activityID).
		Scan(&row)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInvalidChain
	}
	if row.ActivityRate != 0 {
		return row.ActivityRate, nil
	}
	if row.ProjectRate != 0 {
		return row.ProjectRate, nil
	}
	return row.ClientRate, nil
}
