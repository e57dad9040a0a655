package storage

import (
	"context"
	"log"

	"estatehub/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateReservation inserts r unless it overlaps a non-cancelled reservation of the
// same post, in which case ErrConflict is returned. The post row is locked for the
// duration of the check.
func (s *Service) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if err := checkIDs(r.PostID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", r.PostID).
			First(&post).Error
		if err != nil {
			return notFound(err)
		}

		var overlapping int64
		err = tx.Model(&models.Reservation{}).
			Where("post_id = ? AND status <> ?", r.PostID, models.ReservationCancelled).
			Where("start_date < ? AND end_date > ?", r.EndDate, r.StartDate).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrConflict
		}

		if err := tx.Omit("Post").Create(r).Error; err != nil {
			log.Printf("ERROR: Failed to save reservation for post %s: %v", r.PostID, err)
			return err
		}
		return nil
	})
}

func (s *Service) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	var r models.Reservation
	if err := s.DB.WithContext(ctx).Preload("Post").Where("id = ?", id).First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Service) ListReservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Reservation{})
	if f.UserID != "" {
		db = db.Where("reservations.user_id = ?", f.UserID)
	}
	if f.OwnerID != "" {
		db = db.Joins("JOIN posts ON posts.id = reservations.post_id").
			Where("posts.owner_id = ?", f.OwnerID)
	}
	if f.PostID != "" {
		db = db.Where("reservations.post_id = ?", f.PostID)
	}
	if f.Status != "" {
		db = db.Where("reservations.status = ?", f.Status)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Reservation
	err := db.Preload("Post").
		Order("reservations.created_at desc").
		Scopes(paginate(f.Page, f.Limit)).
		Find(&list).Error
	if err != nil {
		log.Printf("ERROR: Failed to list reservations: %v", err)
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateReservationStatus moves the reservation from -> to. The update is
// conditional on the current status so two racing moderators cannot both win.
func (s *Service) UpdateReservationStatus(ctx context.Context, id string, from, to models.ReservationStatus) (*models.Reservation, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetReservation(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleStatus
	}
	return s.GetReservation(ctx, id)
}

func (s *Service) CountReservationsByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error) {
	var rows []struct {
		Status models.ReservationStatus
		Count  int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ReservationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
