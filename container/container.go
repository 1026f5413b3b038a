package container

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/config"
	"github.com/yusufsyaifudin/mailmerge/extd"
	"github.com/yusufsyaifudin/mailmerge/internal/logic/mailmerge"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/templaterepo"
	"github.com/yusufsyaifudin/mailmerge/pkg/cache"
	"github.com/yusufsyaifudin/mailmerge/pkg/logger"
	"github.com/yusufsyaifudin/mailmerge/pkg/tracer"
	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

const templateCachePrefix = "template"

// Container is an abstraction layer to be used in use-case to stitch all business logic.
// Use this when you pass into another struct.
type Container interface {
	TemplateRepo(recordsPath string) (templaterepo.Repo, error)
	MailMerge(recordsPath string, console mailmerge.Console) (mailmerge.Service, error)
	Transport(ctx context.Context, sender *config.Sender, prompter backend.Prompter) (backend.Transport, error)
}

type Config struct {
	App        *config.Config `validate:"required,structonly"`
	AppVersion string         `validate:"required"`

	// TraceOutput receives the spans when tracing is enabled.
	TraceOutput io.Writer `validate:"required"`
}

// DefaultContainerImpl the real implementation of Container
type DefaultContainerImpl struct {
	ctx     context.Context
	cfg     Config
	cache   cache.Cache
	closers []Closer
}

// Ensure that DefaultContainerImpl implements Container
var _ Container = (*DefaultContainerImpl)(nil)

// Setup return DefaultContainerImpl instead of Container so the caller can Close it in deferred mode.
func Setup(ctx context.Context, cfg Config) (dep *DefaultContainerImpl, err error) {
	if err = validator.Validate(cfg); err != nil {
		return nil, err
	}

	dep = &DefaultContainerImpl{
		ctx:     ctx,
		cfg:     cfg,
		closers: make([]Closer, 0),
	}

	// release what was opened so far when a later step fails
	defer func() {
		if err == nil {
			return
		}

		if _err := dep.Close(); _err != nil {
			err = multierr.Append(err, _err)
		}

		dep = nil
	}()

	if cfg.App.Trace {
		shutdown, _err := tracer.InitStdout(cfg.TraceOutput, cfg.AppVersion)
		if _err != nil {
			err = _err
			return
		}

		dep.closers = append(dep.closers, NewNamedCloser("tracer", CloserFunc(func() error {
			return shutdown(ctx)
		})))
	}

	inMemory, err := cache.NewInMemory(cache.DefaultMaxBytes)
	if err != nil {
		err = fmt.Errorf("template cache: %w", err)
		return
	}

	dep.cache = inMemory
	dep.closers = append(dep.closers, NewNamedCloser("template cache", inMemory))

	if err = extd.RegisterDefaultBackends(ctx); err != nil {
		return
	}

	return dep, nil
}

// TemplateRepo serves the templates next to the records file, or from the configured directory.
func (a *DefaultContainerImpl) TemplateRepo(recordsPath string) (templaterepo.Repo, error) {
	dir := a.cfg.App.TemplatesDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(recordsPath), "templates")
	}

	logger.Debug(a.ctx, "template directory", logger.KV("dir", dir))
	return templaterepo.NewCached(templaterepo.CachedConfig{
		Persistent:     templaterepo.NewFS(dir),
		CachePrefixKey: templateCachePrefix,
		Cache:          a.cache,
	})
}

func (a *DefaultContainerImpl) MailMerge(recordsPath string, console mailmerge.Console) (mailmerge.Service, error) {
	templates, err := a.TemplateRepo(recordsPath)
	if err != nil {
		return nil, err
	}

	return mailmerge.New(mailmerge.DefaultServiceConfig{
		Templates: templates,
		Console:   console,
	})
}

// Transport builds the transport that fits the sender config, SMTP when a server is set.
func (a *DefaultContainerImpl) Transport(ctx context.Context, sender *config.Sender, prompter backend.Prompter) (backend.Transport, error) {
	if sender == nil {
		return nil, config.ErrSenderNotConfigured
	}

	provider := backend.SelectProvider(sender.SMTPServer)
	logger.Info(ctx, "selected transport", logger.KV("provider", provider))

	return backend.New(ctx, provider, backend.Params{
		Sender: backend.DisplayAddress{
			Email: sender.Email,
			Name:  sender.Name,
		},
		SMTPServer: sender.SMTPServer,
		SMTPPort:   sender.SMTPPort,
		SMTPUser:   sender.SMTPUser,
		Composer:   sender.Composer,
		Prompter:   prompter,
	})
}

// Close will close all dependencies in reverse order of creation.
func (a *DefaultContainerImpl) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		closer := a.closers[i]
		if _err := closer.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close %s error: %w", closer.Name(), _err))
		}
	}

	a.closers = nil
	return err
}
