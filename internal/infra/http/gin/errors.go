package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/actor"
	bookingapp "rentbook/internal/app/handlers/booking"
	listingapp "rentbook/internal/app/handlers/listings"
	"rentbook/internal/app/handlers/selection"
	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/infra/payments"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{actor.ErrAnonymous, http.StatusUnauthorized},
	{actor.ErrSellerOnly, http.StatusForbidden},
	{actor.ErrNotResourceOf, http.StatusForbidden},
	{domainbooking.ErrOwnListing, http.StatusForbidden},

	{domainlistings.ErrNotFound, http.StatusNotFound},
	{domainbooking.ErrBookingNotFound, http.StatusNotFound},
	{domainavailability.ErrCalendarNotFound, http.StatusNotFound},
	{domainavailability.ErrRangeNotFound, http.StatusNotFound},
	{selection.ErrSessionNotFound, http.StatusNotFound},
	{selection.ErrSessionExpired, http.StatusGone},

	{domainavailability.ErrOverlappingRange, http.StatusConflict},
	{uow.ErrConcurrentUpdate, http.StatusConflict},
	{domainbooking.ErrInvalidState, http.StatusConflict},
	{domainlistings.ErrInvalidState, http.StatusConflict},
	{domainlistings.ErrNotRentable, http.StatusUnprocessableEntity},
	{domainbooking.ErrPaymentRequired, http.StatusPaymentRequired},

	{listingapp.ErrPhotoTooLarge, http.StatusRequestEntityTooLarge},
	{listingapp.ErrPhotoContentType, http.StatusUnsupportedMediaType},
	{listingapp.ErrPhotoEmpty, http.StatusBadRequest},

	{daterange.ErrInvalidDate, http.StatusBadRequest},
	{daterange.ErrInvalidRange, http.StatusBadRequest},
	{domainbooking.ErrPastDates, http.StatusBadRequest},
	{domainbooking.ErrSelectionIncomplete, http.StatusBadRequest},
	{domainpricing.ErrUnparsablePrice, http.StatusBadRequest},
	{domainpricing.ErrUnknownUnit, http.StatusBadRequest},
	{domainpricing.ErrInvalidFees, http.StatusBadRequest},
	{domainlistings.ErrNameRequired, http.StatusBadRequest},
	{domainlistings.ErrCategoryRequired, http.StatusBadRequest},
	{domainlistings.ErrInvalidKind, http.StatusBadRequest},
	{domainlistings.ErrInvalidRating, http.StatusBadRequest},
	{actor.ErrInvalidRole, http.StatusBadRequest},

	{bookingapp.ErrPaymentsUnavailable, http.StatusServiceUnavailable},
	{listingapp.ErrPhotoStorage, http.StatusServiceUnavailable},
	{payments.ErrIntentNotFound, http.StatusBadGateway},
	{payments.ErrAlreadyRefunded, http.StatusBadGateway},
}

func statusFor(err error) int {
	for _, entry := range errorStatuses {
		if errors.Is(err, entry.err) {
			return entry.status
		}
	}
	return http.StatusInternalServerError
}

// respondError hides unmapped errors from clients; the logger middleware
// still sees them through c.Errors.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
