package extd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/backend/bedesktop"
	"github.com/yusufsyaifudin/mailmerge/backend/besmtp"
	"github.com/yusufsyaifudin/mailmerge/pkg/logger"
)

var registerOnce sync.Once

// RegisterDefaultBackends located in extd (extended) so a custom build can register
// more transports next to the default ones. Calling it more than once is safe.
func RegisterDefaultBackends(ctx context.Context) (err error) {
	registerOnce.Do(func() {
		err = register(ctx)
	})

	return
}

func register(ctx context.Context) (err error) {
	defaults := []struct {
		provider string
		factory  backend.Factory
	}{
		{provider: backend.ProviderSMTP, factory: besmtp.New},
		{provider: backend.ProviderDesktop, factory: bedesktop.New},
	}

	for _, d := range defaults {
		_err := backend.Register(d.provider, d.factory)
		if errors.Is(_err, backend.ErrProviderAlreadyRegistered) {
			logger.Debug(ctx, fmt.Sprintf("backend %s already registered", d.provider))
			continue
		}

		if _err != nil {
			err = fmt.Errorf("register backend %s failed: %w", d.provider, _err)
			return
		}
	}

	logger.Debug(ctx, "default backends registered", logger.KV("providers", backend.Providers()))
	return
}
