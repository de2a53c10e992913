package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	"rentbook/internal/app/handlers/selection"
	"rentbook/internal/app/queries"
)

// SelectionHandler drives a server-side date picker session.
type SelectionHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type startSelectionRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func (h SelectionHandler) Start(c *gin.Context) {
	var req startSelectionRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := selection.StartSelectionCommand{ListingID: req.ListingID, Start: req.Start, End: req.End}
	result, err := commands.Dispatch[selection.StartSelectionCommand, dto.Selection](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h SelectionHandler) Get(c *gin.Context) {
	query := selection.GetSelectionQuery{SessionID: c.Param("id")}
	result, err := queries.Ask[selection.GetSelectionQuery, dto.Selection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type tapDateRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h SelectionHandler) Tap(c *gin.Context) {
	var req tapDateRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := selection.TapDateCommand{SessionID: c.Param("id"), Date: req.Date}
	dispatchSelection(c, h.Commands, cmd)
}

func (h SelectionHandler) Clear(c *gin.Context) {
	dispatchSelection(c, h.Commands, selection.ClearSelectionCommand{SessionID: c.Param("id")})
}

func (h SelectionHandler) Confirm(c *gin.Context) {
	dispatchSelection(c, h.Commands, selection.ConfirmSelectionCommand{SessionID: c.Param("id")})
}

func (h SelectionHandler) Close(c *gin.Context) {
	cmd := selection.CloseSelectionCommand{SessionID: c.Param("id")}
	closed, err := commands.Dispatch[selection.CloseSelectionCommand, bool](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	if !closed {
		c.JSON(http.StatusNotFound, gin.H{"error": selection.ErrSessionNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func dispatchSelection[C commands.Command](c *gin.Context, bus commands.Bus, cmd C) {
	result, err := commands.Dispatch[C, dto.Selection](c.Request.Context(), bus, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ SelectionHTTP = SelectionHandler{}
