package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/dto"
	ListingApp "spotaway/internal/app/handlers/listings"
	"spotaway/internal/app/queries"
	domainlistings "spotaway/internal/domain/listings"
)

type ListingHTTP interface {
	Search(c *gin.Context)
	Detail(c *gin.Context)
	Mine(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	AttachImage(c *gin.Context)
	DeleteImage(c *gin.Context)
}

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type listingAttributesRequest struct {
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (r listingAttributesRequest) toAttributes() domainlistings.Attributes {
	return domainlistings.Attributes{
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Country:     r.Country,
		Lat:         r.Lat,
		Lng:         r.Lng,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
	}
}

func (h ListingHandler) Search(c *gin.Context) {
	params, err := searchParamsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	result, err := queries.Ask[ListingApp.SearchListingsQuery, dto.ListingPage](
		c.Request.Context(), h.Queries, ListingApp.SearchListingsQuery{Params: params})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := queries.Ask[ListingApp.GetListingDetailQuery, dto.ListingDetail](
		c.Request.Context(), h.Queries, ListingApp.GetListingDetailQuery{ListingID: id})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Mine(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := queries.Ask[ListingApp.OwnerListingsQuery, dto.ListingPage](
		c.Request.Context(), h.Queries, ListingApp.OwnerListingsQuery{OwnerID: user.ID})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req listingAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	cmd := ListingApp.CreateListingCommand{
		OwnerID:         user.ID,
		Attributes:      req.toAttributes(),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[ListingApp.CreateListingCommand, *dto.ListingSummary](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) Update(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req listingAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	cmd := ListingApp.UpdateListingCommand{
		ListingID:  id,
		OwnerID:    user.ID,
		Attributes: req.toAttributes(),
	}
	result, err := commands.Dispatch[ListingApp.UpdateListingCommand, *dto.ListingSummary](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Delete(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cmd := ListingApp.DeleteListingCommand{ListingID: id, OwnerID: user.ID}
	if _, err := commands.Dispatch[ListingApp.DeleteListingCommand, struct{}](
		c.Request.Context(), h.Commands, cmd); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully deleted"})
}

type attachListingImageRequest struct {
	URL     string `json:"url"`
	Preview bool   `json:"preview"`
}

func (h ListingHandler) AttachImage(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req attachListingImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	cmd := ListingApp.AttachListingImageCommand{
		ListingID: id,
		OwnerID:   user.ID,
		URL:       req.URL,
		Preview:   req.Preview,
	}
	result, err := commands.Dispatch[ListingApp.AttachListingImageCommand, dto.ListingImage](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) DeleteImage(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cmd := ListingApp.DeleteListingImageCommand{ImageID: id, OwnerID: user.ID}
	if _, err := commands.Dispatch[ListingApp.DeleteListingImageCommand, struct{}](
		c.Request.Context(), h.Commands, cmd); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully deleted"})
}

// searchParamsFromQuery parses the optional filter and paging parameters.
// Malformed numbers are rejected; out-of-policy paging values are clamped
// later by the planner.
func searchParamsFromQuery(c *gin.Context) (domainlistings.SearchParams, error) {
	params := domainlistings.SearchParams{}
	var err error
	if params.MinLat, err = optionalFloat(c, "minLat"); err != nil {
		return params, err
	}
	if params.MaxLat, err = optionalFloat(c, "maxLat"); err != nil {
		return params, err
	}
	if params.MinLng, err = optionalFloat(c, "minLng"); err != nil {
		return params, err
	}
	if params.MaxLng, err = optionalFloat(c, "maxLng"); err != nil {
		return params, err
	}
	if params.MinPrice, err = optionalFloat(c, "minPrice"); err != nil {
		return params, err
	}
	if params.MaxPrice, err = optionalFloat(c, "maxPrice"); err != nil {
		return params, err
	}
	if params.Page, err = optionalInt(c, "page"); err != nil {
		return params, err
	}
	if params.PageSize, err = optionalInt(c, "size"); err != nil {
		return params, err
	}
	return params, nil
}

func optionalFloat(c *gin.Context, name string) (*float64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badQueryParam(name)
	}
	return &val, nil
}

func optionalInt(c *gin.Context, name string) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badQueryParam(name)
	}
	return val, nil
}

type queryParamError struct{ name string }

func (e queryParamError) Error() string { return "invalid query parameter: " + e.name }

func badQueryParam(name string) error { return queryParamError{name: name} }

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Resource couldn't be found"})
		return 0, false
	}
	return id, true
}

var _ ListingHTTP = ListingHandler{}
