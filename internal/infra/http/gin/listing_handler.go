package ginserver

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	listingapp "rentbook/internal/app/handlers/listings"
	"rentbook/internal/app/queries"
)

// ListingHandler wires listing commands and queries to HTTP.
type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Catalog responds with a filtered collection of listings.
func (h ListingHandler) Catalog(c *gin.Context) {
	query := listingapp.SearchCatalogQuery{
		Category: c.Query("category"),
		Kind:     c.Query("kind"),
		Query:    c.Query("q"),
		SellerID: c.Query("seller_id"),
		Sort:     c.Query("sort"),
		Limit:    parseIntWithDefault(c.Query("limit"), 24),
		Offset:   parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	query := listingapp.GetListingQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[listingapp.GetListingQuery, dto.ListingDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createListingRequest struct {
	Name        string      `json:"name" binding:"required"`
	Category    string      `json:"category" binding:"required"`
	Price       string      `json:"price" binding:"required"`
	Kind        string      `json:"kind"`
	Description string      `json:"description"`
	Unavailable []dateRange `json:"unavailable"`
	Activate    bool        `json:"activate"`
}

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h ListingHandler) Create(c *gin.Context) {
	var req createListingRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := listingapp.CreateListingCommand{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Kind:        req.Kind,
		Description: req.Description,
		Activate:    req.Activate,
	}
	for _, r := range req.Unavailable {
		cmd.Unavailable = append(cmd.Unavailable, listingapp.UnavailableRange{Start: r.Start, End: r.End})
	}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) Activate(c *gin.Context) {
	cmd := listingapp.ActivateListingCommand{ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.ActivateListingCommand, dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadPhoto expects a multipart form with the image in the "photo" field.
func (h ListingHandler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if file.Size > listingapp.MaxPhotoBytes {
		respondError(c, listingapp.ErrPhotoTooLarge)
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer src.Close()
	body, err := io.ReadAll(io.LimitReader(src, listingapp.MaxPhotoBytes+1))
	if err != nil {
		respondError(c, err)
		return
	}
	cmd := listingapp.UploadPhotoCommand{
		ListingID:   c.Param("id"),
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Body:        body,
	}
	result, err := commands.Dispatch[listingapp.UploadPhotoCommand, dto.PhotoUploadResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ListingHTTP = ListingHandler{}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}
