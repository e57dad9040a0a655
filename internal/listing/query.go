// Package listing holds the search model shared by the posts search, the map view
// and the favorites list: filtering, sorting and pagination of posts.
package listing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"estatehub/backend/internal/config"
	"estatehub/backend/internal/models"

	"gorm.io/gorm"
)

// Sort orders search results.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
)

var ErrInvalidQuery = errors.New("invalid search query")

// Query is bound from the request query string.
type Query struct {
	Q            string              `form:"q"`
	ListingType  models.ListingType  `form:"listingType"`
	PropertyType models.PropertyKind `form:"propertyType"`
	City         string              `form:"city"`
	MinPrice     *float64            `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice     *float64            `form:"maxPrice" binding:"omitempty,gte=0"`
	MinRooms     int                 `form:"minRooms" binding:"gte=0"`
	OwnerID      string              `form:"-"`
	Sort         Sort                `form:"sort"`
	Page         int                 `form:"page"`
	Limit        int                 `form:"limit"`
}

// Normalize validates enums and fills defaults.
func (q *Query) Normalize() error {
	q.Q = strings.TrimSpace(q.Q)
	q.City = strings.TrimSpace(q.City)

	if q.ListingType != "" && !q.ListingType.Valid() {
		return fmt.Errorf("%w: listingType %q", ErrInvalidQuery, q.ListingType)
	}
	if q.PropertyType != "" && !q.PropertyType.Valid() {
		return fmt.Errorf("%w: propertyType %q", ErrInvalidQuery, q.PropertyType)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return fmt.Errorf("%w: minPrice exceeds maxPrice", ErrInvalidQuery)
	}

	switch q.Sort {
	case "":
		q.Sort = SortNewest
	case SortNewest, SortOldest, SortPriceAsc, SortPriceDesc:
	default:
		return fmt.Errorf("%w: sort %q", ErrInvalidQuery, q.Sort)
	}

	q.Page, q.Limit = Paginate(q.Page, q.Limit)
	return nil
}

// Offset is the number of rows skipped for the current page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Paginate clamps page and limit to sane values.
func Paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}
	return page, limit
}

// Matches reports whether p passes every filter of q.
func (q Query) Matches(p models.Post) bool {
	if q.ListingType != "" && p.ListingType != q.ListingType {
		return false
	}
	if q.PropertyType != "" && p.Property != q.PropertyType {
		return false
	}
	if q.City != "" && !strings.EqualFold(p.City, q.City) {
		return false
	}
	if q.OwnerID != "" && p.OwnerID != q.OwnerID {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.MinRooms > 0 && p.Rooms < q.MinRooms {
		return false
	}
	if q.Q != "" {
		needle := strings.ToLower(q.Q)
		hay := strings.ToLower(p.Title + "\n" + p.Description + "\n" + p.Address + "\n" + p.City)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

// Apply filters and sorts posts in memory. The input slice is not modified.
func Apply(posts []models.Post, q Query) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, less(out, q.Sort))
	return out
}

func less(posts []models.Post, s Sort) func(i, j int) bool {
	switch s {
	case SortOldest:
		return func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) }
	case SortPriceAsc:
		return func(i, j int) bool { return posts[i].Price < posts[j].Price }
	case SortPriceDesc:
		return func(i, j int) bool { return posts[i].Price > posts[j].Price }
	default:
		return func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) }
	}
}

// Scope applies the filters of q to a posts query. Pagination is left to the caller
// so the same scope can be used for counting.
func (q Query) Scope(db *gorm.DB) *gorm.DB {
	if q.ListingType != "" {
		db = db.Where("listing_type = ?", q.ListingType)
	}
	if q.PropertyType != "" {
		db = db.Where("property = ?", q.PropertyType)
	}
	if q.City != "" {
		db = db.Where("LOWER(city) = LOWER(?)", q.City)
	}
	if q.OwnerID != "" {
		db = db.Where("owner_id = ?", q.OwnerID)
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	if q.MinRooms > 0 {
		db = db.Where("rooms >= ?", q.MinRooms)
	}
	if q.Q != "" {
		like := "%" + escapeLike(q.Q) + "%"
		db = db.Where("(title ILIKE ? OR description ILIKE ? OR address ILIKE ? OR city ILIKE ?)", like, like, like, like)
	}
	return db
}

// OrderClause is the SQL ORDER BY for q.Sort.
func (q Query) OrderClause() string {
	switch q.Sort {
	case SortOldest:
		return "created_at asc"
	case SortPriceAsc:
		return "price asc, created_at desc"
	case SortPriceDesc:
		return "price desc, created_at desc"
	default:
		return "created_at desc"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Page is a paginated result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
