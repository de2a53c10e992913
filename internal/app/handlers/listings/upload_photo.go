package listings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
)

const uploadPhotoKey = "listings.photo"

// MaxPhotoBytes caps a single upload.
const MaxPhotoBytes = 8 << 20

var (
	ErrPhotoEmpty       = errors.New("listings: photo is empty")
	ErrPhotoTooLarge    = errors.New("listings: photo exceeds size limit")
	ErrPhotoContentType = errors.New("listings: photo must be an image")
	ErrPhotoStorage     = errors.New("listings: photo storage not configured")
)

type UploadPhotoCommand struct {
	ListingID   string
	FileName    string
	ContentType string
	Body        []byte
}

func (c UploadPhotoCommand) Key() string               { return uploadPhotoKey }
func (c UploadPhotoCommand) Access() middleware.Access { return middleware.AccessSeller }

type UploadPhotoHandler struct {
	Uploader policies.PhotoUploader
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *UploadPhotoHandler) Handle(ctx context.Context, cmd UploadPhotoCommand) (dto.PhotoUploadResult, error) {
	if len(cmd.Body) == 0 {
		return dto.PhotoUploadResult{}, ErrPhotoEmpty
	}
	if len(cmd.Body) > MaxPhotoBytes {
		return dto.PhotoUploadResult{}, ErrPhotoTooLarge
	}
	contentType := strings.ToLower(strings.TrimSpace(cmd.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return dto.PhotoUploadResult{}, ErrPhotoContentType
	}
	if h.Uploader == nil {
		return dto.PhotoUploadResult{}, ErrPhotoStorage
	}
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.PhotoUploadResult{}, err
	}
	listing, err := ownedListing(ctx, unit, cmd.ListingID)
	if err != nil {
		return dto.PhotoUploadResult{}, err
	}

	objectKey := fmt.Sprintf("listings/%s/%s%s", listing.ID, uuid.NewString(), photoExt(cmd.FileName, contentType))
	url, err := h.Uploader.Upload(ctx, objectKey, bytes.NewReader(cmd.Body), contentType)
	if err != nil {
		return dto.PhotoUploadResult{}, fmt.Errorf("listings: upload photo: %w", err)
	}
	listing.AddPhoto(url, handlersupport.Now(h.Now))
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.PhotoUploadResult{}, err
	}
	if err := outbox.DrainInto(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.PhotoUploadResult{}, err
	}
	return dto.PhotoUploadResult{
		ListingID:    string(listing.ID),
		Photos:       append([]string{}, listing.Photos...),
		ThumbnailURL: listing.Thumbnail(),
	}, nil
}

func photoExt(fileName, contentType string) string {
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" {
		return ext
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

var _ commands.Handler[UploadPhotoCommand, dto.PhotoUploadResult] = (*UploadPhotoHandler)(nil)
