package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"estatehub/backend/internal/listing"
	"estatehub/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type postInput struct {
	Title       string              `json:"title" binding:"required,min=3,max=200"`
	Description string              `json:"description" binding:"max=5000"`
	Price       float64             `json:"price" binding:"required,gt=0"`
	ListingType models.ListingType  `json:"listingType" binding:"required,oneof=SALE RENT"`
	Property    models.PropertyKind `json:"property" binding:"required,oneof=APARTMENT HOUSE LAND_PLOT"`
	City        string              `json:"city" binding:"required,max=100"`
	Address     string              `json:"address" binding:"required,max=300"`
	Latitude    float64             `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude   float64             `json:"longitude" binding:"gte=-180,lte=180"`
	Images      []string            `json:"images" binding:"max=20,dive,url"`
	Details     json.RawMessage     `json:"details" binding:"required"`
}

// postPatch is a partial update; nil fields are left unchanged.
type postPatch struct {
	Title       *string              `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string              `json:"description" binding:"omitempty,max=5000"`
	Price       *float64             `json:"price" binding:"omitempty,gt=0"`
	ListingType *models.ListingType  `json:"listingType" binding:"omitempty,oneof=SALE RENT"`
	Property    *models.PropertyKind `json:"property" binding:"omitempty,oneof=APARTMENT HOUSE LAND_PLOT"`
	City        *string              `json:"city" binding:"omitempty,max=100"`
	Address     *string              `json:"address" binding:"omitempty,max=300"`
	Latitude    *float64             `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude   *float64             `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Images      []string             `json:"images" binding:"omitempty,max=20,dive,url"`
	Details     json.RawMessage      `json:"details"`
}

// applyDetails decodes raw into the variant of kind, validates it and stores it on p.
func applyDetails(p *models.Post, kind models.PropertyKind, raw []byte) error {
	details, err := models.DecodeDetails(kind, raw)
	if err != nil {
		return err
	}
	if err := binding.Validator.ValidateStruct(details); err != nil {
		return err
	}
	return p.SetDetails(details)
}

func (h *Handler) CreatePost(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var in postInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}

	post := &models.Post{
		OwnerID:     actor.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		ListingType: in.ListingType,
		City:        strings.TrimSpace(in.City),
		Address:     strings.TrimSpace(in.Address),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Images:      in.Images,
	}
	if err := applyDetails(post, in.Property, in.Details); err != nil {
		respondError(c, err)
		return
	}
	if err := h.Store.CreatePost(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.Store.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ownedPost loads the post and checks that the actor may modify it.
func (h *Handler) ownedPost(c *gin.Context) (*models.Post, bool) {
	actor, ok := actorOf(c)
	if !ok {
		return nil, false
	}
	post, err := h.Store.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if post.OwnerID != actor.UserID && !actor.IsAdmin() {
		respondError(c, ErrForbidden)
		return nil, false
	}
	return post, true
}

func (h *Handler) UpdatePost(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	var in postPatch
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, err)
		return
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		post.Description = *in.Description
	}
	if in.Price != nil {
		post.Price = *in.Price
	}
	if in.ListingType != nil {
		post.ListingType = *in.ListingType
	}
	if in.City != nil {
		post.City = strings.TrimSpace(*in.City)
	}
	if in.Address != nil {
		post.Address = strings.TrimSpace(*in.Address)
	}
	if in.Latitude != nil {
		post.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		post.Longitude = *in.Longitude
	}
	if in.Images != nil {
		post.Images = in.Images
	}
	if in.Property != nil || in.Details != nil {
		kind, raw := post.Property, []byte(post.Details)
		if in.Property != nil {
			kind = *in.Property
		}
		if in.Details != nil {
			raw = in.Details
		}
		if err := applyDetails(post, kind, raw); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := h.Store.UpdatePost(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	if err := h.Store.DeletePost(c.Request.Context(), post.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindQuery(c *gin.Context) (listing.Query, bool) {
	var q listing.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, err)
		return q, false
	}
	if err := q.Normalize(); err != nil {
		respondError(c, err)
		return q, false
	}
	return q, true
}

// SearchPosts handles GET /posts.
func (h *Handler) SearchPosts(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	posts, total, err := h.Store.SearchPosts(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	c.JSON(http.StatusOK, listing.Page[models.Post]{Items: posts, Total: total, Page: q.Page, Limit: q.Limit})
}

// MapPosts handles GET /posts/map: the pins inside the visible bounds, with the
// same filters as the search.
func (h *Handler) MapPosts(c *gin.Context) {
	var b listing.Bounds
	if err := c.ShouldBindQuery(&b); err != nil {
		respondError(c, err)
		return
	}
	if err := b.Validate(); err != nil {
		respondError(c, err)
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	pins, err := h.Store.PostsInBounds(c.Request.Context(), b, q)
	if err != nil {
		respondError(c, err)
		return
	}
	if pins == nil {
		pins = []models.MapPin{}
	}
	c.JSON(http.StatusOK, gin.H{"items": pins})
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	favorite, err := h.Store.ToggleFavorite(c.Request.Context(), actor.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"postId": c.Param("id"), "favorite": favorite})
}

// ListFavorites filters and sorts the saved posts in memory with the search query model.
func (h *Handler) ListFavorites(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	saved, err := h.Store.ListFavoritePosts(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	matched := listing.Apply(saved, q)
	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit, total)
	c.JSON(http.StatusOK, listing.Page[models.Post]{Items: matched[start:end], Total: int64(total), Page: q.Page, Limit: q.Limit})
}
