package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

const (
	ProviderSMTP    = "smtp"
	ProviderDesktop = "desktop"
)

type Registry struct {
	lock      sync.RWMutex
	factories map[string]Factory
}

var defaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
	}
}

// Register adds a transport factory to the process wide registry.
func Register(provider string, factory Factory) error {
	return defaultRegistry.Register(provider, factory)
}

// New builds (but does not open) the transport registered as provider.
func New(ctx context.Context, provider string, params Params) (Transport, error) {
	return defaultRegistry.New(ctx, provider, params)
}

func Providers() []string {
	return defaultRegistry.Providers()
}

func (r *Registry) Register(provider string, factory Factory) (err error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		err = fmt.Errorf("cannot assign empty provider name")
		return
	}

	if provider != strings.ToLower(provider) {
		err = fmt.Errorf("provider name must only contain lower case")
		return
	}

	if !utf8.ValidString(provider) {
		err = fmt.Errorf("provider name must only use utf8 characters")
		return
	}

	if factory == nil {
		err = fmt.Errorf("cannot assign nil factory")
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exist := r.factories[provider]; exist {
		err = fmt.Errorf("%w '%s'", ErrProviderAlreadyRegistered, provider)
		return
	}

	r.factories[provider] = factory
	return
}

func (r *Registry) New(ctx context.Context, provider string, params Params) (Transport, error) {
	if err := validator.Validate(params); err != nil {
		return nil, fmt.Errorf("transport params for provider '%s': %w", provider, err)
	}

	r.lock.RLock()
	factory, exist := r.factories[provider]
	r.lock.RUnlock()

	if !exist {
		return nil, fmt.Errorf("%w: '%s'", ErrProviderNotRegistered, provider)
	}

	t, err := factory(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("build transport '%s': %w", provider, err)
	}

	return t, nil
}

func (r *Registry) Providers() (providers []string) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	providers = make([]string, 0, len(r.factories))
	for provider := range r.factories {
		providers = append(providers, provider)
	}

	sort.Strings(providers)
	return
}

// SelectProvider picks the transport for a sender: SMTP when a server is
// configured, the interactive desktop client otherwise.
func SelectProvider(smtpServer string) string {
	if strings.TrimSpace(smtpServer) != "" {
		return ProviderSMTP
	}

	return ProviderDesktop
}
