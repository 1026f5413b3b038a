package backend

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// Use logs t in, runs fn and always quits t afterwards, also when fn fails or panics.
// A failed Login still calls Quit so a half opened session is released.
func Use(ctx context.Context, t Transport, fn func(ctx context.Context, t Transport) error) (err error) {
	if t == nil {
		return fmt.Errorf("cannot use nil transport")
	}

	defer func() {
		if _err := t.Quit(ctx); _err != nil {
			err = multierr.Append(err, fmt.Errorf("quit transport: %w", _err))
		}
	}()

	err = t.Login(ctx)
	if err != nil {
		err = fmt.Errorf("login transport: %w", err)
		return
	}

	err = fn(ctx, t)
	return
}
