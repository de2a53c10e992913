package middleware

import (
	"context"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/uow"
)

// TxOptionsProvider picks the unit options for a command.
type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// ReadOnlyCommands opens read-only units for the listed command keys.
func ReadOnlyCommands(keys ...string) TxOptionsProvider {
	readOnly := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		readOnly[key] = struct{}{}
	}
	return func(cmd commands.Command) uow.TxOptions {
		_, ok := readOnly[cmd.Key()]
		return uow.TxOptions{ReadOnly: ok}
	}
}

// Transaction runs every command inside one unit of work. The unit is
// committed only when the handler returns no error; a command dispatched
// while a unit is already bound joins it.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (res any, err error) {
			if _, joined := uow.FromContext(ctx); joined {
				return next.Dispatch(ctx, cmd)
			}
			var opts uow.TxOptions
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}
			bound := uow.Bind(ctx, unit)
			defer func() {
				if err != nil {
					_ = unit.Rollback(bound)
				}
			}()

			if res, err = next.Dispatch(bound, cmd); err != nil {
				return nil, err
			}
			if err = unit.Commit(bound); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
