package selection

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/dto"
	pricinghandlers "rentbook/internal/app/handlers/pricing"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
)

const (
	startSelectionKey   = "selection.start"
	tapDateKey          = "selection.tap"
	clearSelectionKey   = "selection.clear"
	confirmSelectionKey = "selection.confirm"
	closeSelectionKey   = "selection.close"
	sweepSelectionsKey  = "selection.sweep"
	getSelectionKey     = "selection.get"
)

// StartSelectionCommand opens a picker for a listing, optionally seeded with
// a previous range.
type StartSelectionCommand struct {
	ListingID string
	Start     string
	End       string
}

func (c StartSelectionCommand) Key() string               { return startSelectionKey }
func (c StartSelectionCommand) Access() middleware.Access { return middleware.AccessUser }

type TapDateCommand struct {
	SessionID string
	Date      string
}

func (c TapDateCommand) Key() string               { return tapDateKey }
func (c TapDateCommand) Access() middleware.Access { return middleware.AccessUser }

type ClearSelectionCommand struct {
	SessionID string
}

func (c ClearSelectionCommand) Key() string               { return clearSelectionKey }
func (c ClearSelectionCommand) Access() middleware.Access { return middleware.AccessUser }

// ConfirmSelectionCommand returns the picked range with its quote. The
// session stays open so the user can go back and adjust.
type ConfirmSelectionCommand struct {
	SessionID string
}

func (c ConfirmSelectionCommand) Key() string               { return confirmSelectionKey }
func (c ConfirmSelectionCommand) Access() middleware.Access { return middleware.AccessUser }

type CloseSelectionCommand struct {
	SessionID string
}

func (c CloseSelectionCommand) Key() string               { return closeSelectionKey }
func (c CloseSelectionCommand) Access() middleware.Access { return middleware.AccessUser }

// SweepSelectionsCommand is issued by the scheduler.
type SweepSelectionsCommand struct{}

func (SweepSelectionsCommand) Key() string { return sweepSelectionsKey }

type GetSelectionQuery struct {
	SessionID string
}

func (q GetSelectionQuery) Key() string               { return getSelectionKey }
func (q GetSelectionQuery) Access() middleware.Access { return middleware.AccessUser }

// Handlers serves every picker command; each method is registered through
// commands.HandlerFunc.
type Handlers struct {
	UoWFactory uow.UoWFactory
	Sessions   Store
	Fees       policies.FeePolicy
	TTL        time.Duration
	Now        func() time.Time
}

func (h *Handlers) Start(ctx context.Context, cmd StartSelectionCommand) (dto.Selection, error) {
	user, err := actor.Require(ctx)
	if err != nil {
		return dto.Selection{}, err
	}
	seed, err := daterange.ParseRange(cmd.Start, cmd.End)
	if err != nil {
		return dto.Selection{}, err
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Selection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return dto.Selection{}, err
	}
	if err := listing.EnsureRentable(); err != nil {
		return dto.Selection{}, err
	}
	calendar, err := handlersupport.CalendarFor(execCtx, unit, listing)
	if err != nil {
		return dto.Selection{}, err
	}

	now := handlersupport.Now(h.Now)
	session := &Session{
		ID:        uuid.NewString(),
		ListingID: string(listing.ID),
		UserID:    user.UserID,
		Selector: domainbooking.NewSelector(
			calendar.UnavailableDates(),
			seed,
			domainbooking.WithMinDate(daterange.Today(now)),
		),
		CreatedAt: now,
	}
	session.Touch(now, h.ttl())
	if err := h.Sessions.Create(ctx, session); err != nil {
		return dto.Selection{}, err
	}
	return snapshot(session, true), nil
}

func (h *Handlers) Tap(ctx context.Context, cmd TapDateCommand) (dto.Selection, error) {
	day, err := daterange.Parse(cmd.Date)
	if err != nil {
		return dto.Selection{}, err
	}
	return h.mutate(ctx, cmd.SessionID, func(s *Session) bool {
		return s.Selector.Tap(day)
	})
}

func (h *Handlers) Clear(ctx context.Context, cmd ClearSelectionCommand) (dto.Selection, error) {
	return h.mutate(ctx, cmd.SessionID, func(s *Session) bool {
		changed := s.Selector.State() != domainbooking.SelectionEmpty
		s.Selector.Clear()
		return changed
	})
}

func (h *Handlers) Confirm(ctx context.Context, cmd ConfirmSelectionCommand) (dto.Selection, error) {
	var (
		out        dto.Selection
		picked     daterange.Range
		listing    string
		confirmErr error
	)
	_, err := h.mutate(ctx, cmd.SessionID, func(s *Session) bool {
		picked, confirmErr = s.Selector.Confirm()
		listing = s.ListingID
		out = snapshot(s, false)
		return false
	})
	if err != nil {
		return dto.Selection{}, err
	}
	if confirmErr != nil {
		return dto.Selection{}, confirmErr
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Selection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	item, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(listing))
	if err != nil {
		return dto.Selection{}, err
	}
	quote := pricinghandlers.BuildQuote(execCtx, item, picked, h.Fees)
	out.Quote = &quote
	return out, nil
}

func (h *Handlers) Close(ctx context.Context, cmd CloseSelectionCommand) (bool, error) {
	if _, err := h.owned(ctx, cmd.SessionID); err != nil {
		return false, err
	}
	return h.Sessions.Delete(ctx, cmd.SessionID)
}

func (h *Handlers) Sweep(ctx context.Context, _ SweepSelectionsCommand) (int, error) {
	return h.Sessions.Sweep(ctx, handlersupport.Now(h.Now))
}

func (h *Handlers) Get(ctx context.Context, q GetSelectionQuery) (dto.Selection, error) {
	return h.owned(ctx, q.SessionID)
}

// owned snapshots the session after checking expiry and ownership.
func (h *Handlers) owned(ctx context.Context, id string) (dto.Selection, error) {
	var out dto.Selection
	_, err := h.mutate(ctx, id, func(s *Session) bool {
		out = snapshot(s, false)
		return false
	})
	return out, err
}

// mutate applies fn under the session lock. Any access by the owner slides
// the expiry.
func (h *Handlers) mutate(ctx context.Context, id string, fn func(*Session) bool) (dto.Selection, error) {
	user, err := actor.Require(ctx)
	if err != nil {
		return dto.Selection{}, err
	}
	now := handlersupport.Now(h.Now)
	var out dto.Selection
	err = h.Sessions.Update(ctx, id, func(s *Session) error {
		if s.Expired(now) {
			return ErrSessionExpired
		}
		if s.UserID != user.UserID {
			return actor.ErrNotResourceOf
		}
		changed := fn(s)
		s.Touch(now, h.ttl())
		out = snapshot(s, changed)
		return nil
	})
	return out, err
}

func (h *Handlers) ttl() time.Duration {
	if h.TTL <= 0 {
		return DefaultTTL
	}
	return h.TTL
}

func snapshot(s *Session, changed bool) dto.Selection {
	out := dto.MapSelection(s.ID, s.ListingID, s.Selector, s.ExpiresAt)
	out.Changed = changed
	return out
}
