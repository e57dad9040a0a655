package storage

import (
	"context"
	"errors"
	"log"

	"estatehub/backend/internal/listing"
	"estatehub/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Service) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.DB.WithContext(ctx).Create(post).Error; err != nil {
		log.Printf("ERROR: Failed to create post for owner %s: %v", post.OwnerID, err)
		return err
	}
	return nil
}

func (s *Service) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	var post models.Post
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *Service) UpdatePost(ctx context.Context, post *models.Post) error {
	return s.DB.WithContext(ctx).Save(post).Error
}

// DeletePost removes the post together with its favorites, reservations and complaints.
func (s *Service) DeletePost(ctx context.Context, id string) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{&models.Favorite{}, &models.Reservation{}, &models.Complaint{}} {
			if err := tx.Where("post_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SearchPosts returns one page of posts matching q and the total match count.
func (s *Service) SearchPosts(ctx context.Context, q listing.Query) ([]models.Post, int64, error) {
	var (
		posts []models.Post
		total int64
	)
	base := s.DB.WithContext(ctx).Model(&models.Post{}).Scopes(q.Scope).Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		log.Printf("ERROR: Failed to count posts: %v", err)
		return nil, 0, err
	}
	err := base.Order(q.OrderClause()).
		Scopes(paginate(q.Page, q.Limit)).
		Find(&posts).Error
	if err != nil {
		log.Printf("ERROR: Failed to search posts: %v", err)
		return nil, 0, err
	}
	return posts, total, nil
}

// PostsInBounds returns map pins for posts inside b that also match the filters of q.
func (s *Service) PostsInBounds(ctx context.Context, b listing.Bounds, q listing.Query) ([]models.MapPin, error) {
	db := s.DB.WithContext(ctx).Model(&models.Post{}).
		Scopes(q.Scope).
		Where("latitude BETWEEN ? AND ?", b.MinLat, b.MaxLat)
	if b.CrossesAntimeridian() {
		db = db.Where("(longitude >= ? OR longitude <= ?)", b.MinLng, b.MaxLng)
	} else {
		db = db.Where("longitude BETWEEN ? AND ?", b.MinLng, b.MaxLng)
	}

	var pins []models.MapPin
	err := db.Select("id", "title", "price", "listing_type", "property", "latitude", "longitude").
		Order(q.OrderClause()).
		Limit(q.Limit).
		Scan(&pins).Error
	if err != nil {
		return nil, err
	}
	return pins, nil
}

// ToggleFavorite adds the post to the user's favorites or removes it.
// It returns true when the post is a favorite after the call.
func (s *Service) ToggleFavorite(ctx context.Context, userID, postID string) (bool, error) {
	if err := checkIDs(userID, postID); err != nil {
		return false, err
	}
	var favorited bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			favorited = false
			return nil
		}
		fav := models.Favorite{UserID: userID, PostID: postID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("Post").Create(&fav).Error; err != nil {
			return err
		}
		favorited = true
		return nil
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return false, ErrNotFound
	}
	return favorited, err
}

// ListFavoritePosts returns every post the user saved, most recently saved first.
func (s *Service) ListFavoritePosts(ctx context.Context, userID string) ([]models.Post, error) {
	var favs []models.Favorite
	err := s.DB.WithContext(ctx).
		Preload("Post").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&favs).Error
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(favs))
	for _, f := range favs {
		if f.Post.ID != "" {
			posts = append(posts, f.Post)
		}
	}
	return posts, nil
}
