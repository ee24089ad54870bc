package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"spotaway/internal/app/commands"
	"spotaway/internal/app/dto"
	BookingApp "spotaway/internal/app/handlers/booking"
	"spotaway/internal/app/queries"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Availability(c *gin.Context)
	Mine(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

const bookingDateLayout = "2006-01-02"

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	start, end, ok := parseBookingDates(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}
	cmd := BookingApp.AdmitBookingCommand{
		ListingID:       listingID,
		GuestID:         user.ID,
		StartDate:       start,
		EndDate:         end,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.AdmitBookingCommand, *dto.Booking](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Availability(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	start, end, ok := parseBookingDates(c, c.Query("start_date"), c.Query("end_date"))
	if !ok {
		return
	}
	result, err := queries.Ask[BookingApp.CheckAvailabilityQuery, dto.Availability](
		c.Request.Context(), h.Queries, BookingApp.CheckAvailabilityQuery{
			ListingID: listingID,
			StartDate: start,
			EndDate:   end,
		})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Mine(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := queries.Ask[BookingApp.ListGuestBookingsQuery, dto.BookingCollection](
		c.Request.Context(), h.Queries, BookingApp.ListGuestBookingsQuery{GuestID: user.ID})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseBookingDates(c *gin.Context, rawStart, rawEnd string) (time.Time, time.Time, bool) {
	start, err := time.Parse(bookingDateLayout, rawStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "booking validation failed",
			"errors": gin.H{"startDate": "Start date must be a valid date"}})
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(bookingDateLayout, rawEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "booking validation failed",
			"errors": gin.H{"endDate": "End date must be a valid date"}})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

var _ BookingHTTP = BookingHandler{}
