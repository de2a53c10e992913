package main

import (
	"log/slog"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	availabilityapp "rentbook/internal/app/handlers/availability"
	bookingapp "rentbook/internal/app/handlers/booking"
	listingapp "rentbook/internal/app/handlers/listings"
	pricingapp "rentbook/internal/app/handlers/pricing"
	"rentbook/internal/app/handlers/selection"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/schedule"
	"rentbook/internal/app/uow"
	ginserver "rentbook/internal/infra/http/gin"
)

type application struct {
	handlers  ginserver.Handlers
	commands  commands.Bus
	queries   queries.Bus
	factory   uow.UoWFactory
	scheduler *schedule.Scheduler
}

type appDeps struct {
	infra          *infrastructure
	fees           policies.FeePolicy
	payments       policies.PaymentsPort
	sessionTTL     time.Duration
	completionCron string
	sweepCron      string
	now            func() time.Time
}

func buildApplication(deps appDeps, logger *slog.Logger) (application, error) {
	inf := deps.infra
	enc := outbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		Outbox: inf.outbox, Encoder: enc, Now: deps.now,
	})
	commands.RegisterHandler(commandBus, listingapp.ActivateListingCommand{}.Key(), &listingapp.ActivateListingHandler{
		Outbox: inf.outbox, Encoder: enc, Now: deps.now,
	})
	commands.RegisterHandler(commandBus, listingapp.UploadPhotoCommand{}.Key(), &listingapp.UploadPhotoHandler{
		Uploader: inf.photos, Outbox: inf.outbox, Encoder: enc, Now: deps.now,
	})
	commands.RegisterHandler(commandBus, availabilityapp.BlockDatesCommand{}.Key(), &availabilityapp.BlockDatesHandler{
		Outbox: inf.outbox, Encoder: enc, Now: deps.now,
	})
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		Fees: deps.fees, Outbox: inf.outbox, Encoder: enc, Now: deps.now,
	})
	commands.RegisterHandler(commandBus, bookingapp.PayBookingCommand{}.Key(), &bookingapp.PayBookingHandler{
		Payments: deps.payments, Outbox: inf.outbox, Encoder: enc, Logger: logger, Now: deps.now,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		Payments: deps.payments, Outbox: inf.outbox, Encoder: enc, Now: deps.now,
	})
	commands.RegisterHandler(commandBus, bookingapp.CompleteDueCommand{}.Key(), &bookingapp.CompleteDueHandler{
		Outbox: inf.outbox, Encoder: enc, Now: deps.now,
	})

	picker := &selection.Handlers{
		UoWFactory: inf.factory,
		Sessions:   inf.sessions,
		Fees:       deps.fees,
		TTL:        deps.sessionTTL,
		Now:        deps.now,
	}
	commands.RegisterHandler(commandBus, selection.StartSelectionCommand{}.Key(), commands.HandlerFunc[selection.StartSelectionCommand, dto.Selection](picker.Start))
	commands.RegisterHandler(commandBus, selection.TapDateCommand{}.Key(), commands.HandlerFunc[selection.TapDateCommand, dto.Selection](picker.Tap))
	commands.RegisterHandler(commandBus, selection.ClearSelectionCommand{}.Key(), commands.HandlerFunc[selection.ClearSelectionCommand, dto.Selection](picker.Clear))
	commands.RegisterHandler(commandBus, selection.ConfirmSelectionCommand{}.Key(), commands.HandlerFunc[selection.ConfirmSelectionCommand, dto.Selection](picker.Confirm))
	commands.RegisterHandler(commandBus, selection.CloseSelectionCommand{}.Key(), commands.HandlerFunc[selection.CloseSelectionCommand, bool](picker.Close))
	commands.RegisterHandler(commandBus, selection.SweepSelectionsCommand{}.Key(), commands.HandlerFunc[selection.SweepSelectionsCommand, int](picker.Sweep))

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, pricingapp.ParsePriceQuery{}.Key(), pricingapp.ParsePriceHandler{})
	queries.RegisterHandler(queryBus, pricingapp.QuoteQuery{}.Key(), &pricingapp.QuoteHandler{
		UoWFactory: inf.factory, Fees: deps.fees,
	})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory: inf.factory, Now: deps.now,
	})
	queries.RegisterHandler(queryBus, listingapp.SearchCatalogQuery{}.Key(), &listingapp.SearchCatalogHandler{UoWFactory: inf.factory})
	queries.RegisterHandler(queryBus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{UoWFactory: inf.factory})
	queries.RegisterHandler(queryBus, bookingapp.ListMyBookingsQuery{}.Key(), &bookingapp.ListMyBookingsHandler{UoWFactory: inf.factory})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: inf.factory})
	queries.RegisterHandler(queryBus, selection.GetSelectionQuery{}.Key(), queries.HandlerFunc[selection.GetSelectionQuery, dto.Selection](picker.Get))

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.Authorization(middleware.RoleAuthorizer{}),
		middleware.Idempotency(inf.idempotency, nil),
		middleware.OutboxFlush(inf.outbox, logger),
		middleware.Transaction(inf.factory, middleware.ReadOnlyCommands(
			selection.StartSelectionCommand{}.Key(),
			selection.TapDateCommand{}.Key(),
			selection.ClearSelectionCommand{}.Key(),
			selection.ConfirmSelectionCommand{}.Key(),
			selection.CloseSelectionCommand{}.Key(),
			selection.SweepSelectionsCommand{}.Key(),
		)),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryAuthorization(middleware.RoleAuthorizer{}),
	)

	scheduler := schedule.New(commandBusWithMiddleware, logger)
	for _, job := range []schedule.Job{
		{Name: "complete_due", Spec: deps.completionCron, Command: bookingapp.CompleteDueCommand{}},
		{Name: "sweep_selections", Spec: deps.sweepCron, Command: selection.SweepSelectionsCommand{}},
	} {
		if err := scheduler.Register(job); err != nil {
			return application{}, err
		}
	}

	return application{
		handlers: ginserver.Handlers{
			Pricing:         ginserver.PricingHandler{Queries: queryBusWithMiddleware},
			Availability:    ginserver.AvailabilityHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Selection:       ginserver.SelectionHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Listing:         ginserver.ListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Booking:         ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			ActorMiddleware: ginserver.ActorMiddleware(),
		},
		commands:  commandBusWithMiddleware,
		queries:   queryBusWithMiddleware,
		factory:   inf.factory,
		scheduler: scheduler,
	}, nil
}
