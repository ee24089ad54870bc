package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/dto"
	ReviewApp "spotaway/internal/app/handlers/reviews"
	"spotaway/internal/app/queries"
)

type ReviewHTTP interface {
	ListForListing(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Mine(c *gin.Context)
	AttachImage(c *gin.Context)
	DeleteImage(c *gin.Context)
}

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type reviewRequest struct {
	Text  string  `json:"text"`
	Stars float64 `json:"stars"`
}

func (h ReviewHandler) ListForListing(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := queries.Ask[ReviewApp.ListListingReviewsQuery, dto.ReviewCollection](
		c.Request.Context(), h.Queries, ReviewApp.ListListingReviewsQuery{ListingID: listingID})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	cmd := ReviewApp.AdmitReviewCommand{
		ListingID: listingID,
		AuthorID:  user.ID,
		Text:      req.Text,
		Stars:     req.Stars,
	}
	result, err := commands.Dispatch[ReviewApp.AdmitReviewCommand, dto.Review](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) Update(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	cmd := ReviewApp.UpdateReviewCommand{
		ReviewID: reviewID,
		AuthorID: user.ID,
		Text:     req.Text,
		Stars:    req.Stars,
	}
	result, err := commands.Dispatch[ReviewApp.UpdateReviewCommand, dto.Review](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) Delete(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cmd := ReviewApp.DeleteReviewCommand{ReviewID: reviewID, AuthorID: user.ID}
	if _, err := commands.Dispatch[ReviewApp.DeleteReviewCommand, struct{}](
		c.Request.Context(), h.Commands, cmd); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully deleted"})
}

func (h ReviewHandler) Mine(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := queries.Ask[ReviewApp.ListAuthorReviewsQuery, dto.ReviewCollection](
		c.Request.Context(), h.Queries, ReviewApp.ListAuthorReviewsQuery{AuthorID: user.ID})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type attachReviewImageRequest struct {
	URL string `json:"url"`
}

func (h ReviewHandler) AttachImage(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req attachReviewImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	cmd := ReviewApp.AttachReviewImageCommand{
		ReviewID: reviewID,
		AuthorID: user.ID,
		URL:      req.URL,
	}
	result, err := commands.Dispatch[ReviewApp.AttachReviewImageCommand, dto.ReviewImage](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) DeleteImage(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	imageID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cmd := ReviewApp.DeleteReviewImageCommand{ImageID: imageID, AuthorID: user.ID}
	if _, err := commands.Dispatch[ReviewApp.DeleteReviewImageCommand, struct{}](
		c.Request.Context(), h.Commands, cmd); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully deleted"})
}

var _ ReviewHTTP = ReviewHandler{}
