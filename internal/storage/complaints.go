package storage

import (
	"context"
	"log"

	"estatehub/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	if err := checkIDs(c.PostID); err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = models.ComplaintPending
	}

	if err := s.DB.WithContext(ctx).Omit("Post").Create(c).Error; err != nil {
		log.Printf("ERROR: Failed to save complaint for post %s: %v", c.PostID, err)
		return err
	}
	return nil
}

func (s *Service) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	var c models.Complaint
	if err := s.DB.WithContext(ctx).Preload("Post").Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Service) ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Complaint{})
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.PostID != "" {
		db = db.Where("post_id = ?", f.PostID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Complaint
	err := db.Preload("Post").
		Order("created_at desc").
		Scopes(paginate(f.Page, f.Limit)).
		Find(&list).Error
	if err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateComplaintStatus moves the complaint from -> to, conditional on the current status.
func (s *Service) UpdateComplaintStatus(ctx context.Context, id string, from, to models.ComplaintStatus) (*models.Complaint, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetComplaint(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleStatus
	}
	return s.GetComplaint(ctx, id)
}

func (s *Service) CountComplaintsByStatus(ctx context.Context) (map[models.ComplaintStatus]int64, error) {
	var rows []struct {
		Status models.ComplaintStatus
		Count  int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ComplaintStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
