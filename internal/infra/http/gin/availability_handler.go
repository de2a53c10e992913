package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	availabilityapp "rentbook/internal/app/handlers/availability"
	"rentbook/internal/app/queries"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Calendar marks ?start=&end= when given, as the picker would.
func (h AvailabilityHandler) Calendar(c *gin.Context) {
	query := availabilityapp.GetCalendarQuery{
		ListingID: c.Param("id"),
		Start:     c.Query("start"),
		End:       c.Query("end"),
	}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type blockDatesRequest struct {
	Start     string `json:"start" binding:"required"`
	End       string `json:"end" binding:"required"`
	Reference string `json:"reference"`
}

func (h AvailabilityHandler) Block(c *gin.Context) {
	var req blockDatesRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := availabilityapp.BlockDatesCommand{
		ListingID: c.Param("id"),
		Start:     req.Start,
		End:       req.End,
		Reference: req.Reference,
	}
	result, err := commands.Dispatch[availabilityapp.BlockDatesCommand, dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
