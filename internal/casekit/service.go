// Package casekit wires configuration to the registry, state store and
// clipboard, and builds converter sessions from them.
package casekit

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/casekit/internal/converter"
	"github.com/hay-kot/casekit/internal/core/config"
	"github.com/hay-kot/casekit/internal/core/state"
	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/integration/clipboard"
	"github.com/hay-kot/casekit/internal/remote"
	"github.com/hay-kot/casekit/internal/store/jsonfile"
	"github.com/hay-kot/casekit/internal/store/redis"
)

// Service holds the collaborators shared by every session of a run.
type Service struct {
	config    *config.Config
	registry  transform.Registry
	store     state.Store
	clipboard clipboard.Clipboard
	log       zerolog.Logger
	closers   []func() error
}

// New builds the registry, state store and clipboard selected by cfg.
func New(cfg *config.Config, log zerolog.Logger) (*Service, error) {
	s := &Service{
		config:    cfg,
		clipboard: clipboard.New(cfg.Clipboard.Command, cfg.Clipboard.PasteCommand),
		log:       log,
	}

	if cfg.Registry.URL == "" {
		s.registry = transform.Builtin()
	} else {
		reg, err := remote.New(cfg.Registry.URL,
			remote.WithTimeout(cfg.TransformTimeout),
			remote.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("create registry: %w", err)
		}
		s.registry = reg
	}

	switch cfg.State.Backend {
	case config.BackendRedis:
		rc := cfg.State.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithPrefix(rc.Prefix),
			redis.WithTTL(rc.TTL),
		)
		s.store = store
		s.closers = append(s.closers, store.Close)
	case config.BackendMemory:
		s.store = state.NewMemoryStore()
	default:
		s.store = jsonfile.NewKVStore(cfg.StateFile())
	}

	log.Debug().
		Str("backend", cfg.State.Backend).
		Bool("remote_registry", cfg.Registry.URL != "").
		Msg("service ready")

	return s, nil
}

// NewWith creates a service from existing collaborators.
func NewWith(cfg *config.Config, registry transform.Registry, store state.Store, cb clipboard.Clipboard, log zerolog.Logger) *Service {
	return &Service{
		config:    cfg,
		registry:  registry,
		store:     store,
		clipboard: cb,
		log:       log,
	}
}

func (s *Service) Config() *config.Config         { return s.config }
func (s *Service) Registry() transform.Registry   { return s.registry }
func (s *Service) Store() state.Store             { return s.store }
func (s *Service) Clipboard() clipboard.Clipboard { return s.clipboard }

// NewSession creates a session configured from the config and restores the
// persisted selection. extra options are applied last.
func (s *Service) NewSession(ctx context.Context, extra ...converter.Option) *converter.Session {
	cfg := s.config
	opts := []converter.Option{
		converter.WithHistorySize(cfg.HistorySize),
		converter.WithDebounce(cfg.Debounce),
		converter.WithCopiedReset(cfg.CopiedReset),
		converter.WithTimeout(cfg.TransformTimeout),
		converter.WithDefaultTransformation(cfg.DefaultTransformation),
		converter.WithPreviews(cfg.Previews.Slots, cfg.Previews.MaxSlots),
		converter.WithClipboard(s.clipboard),
		converter.WithStateStore(s.store),
		converter.WithLogger(s.log),
	}
	opts = append(opts, extra...)

	sess := converter.New(s.registry, opts...)
	sess.Restore(ctx)
	return sess
}

// Selection returns the persisted selection, or the configured default when
// nothing has been saved.
func (s *Service) Selection(ctx context.Context) (state.Snapshot, error) {
	snap, err := state.Load(ctx, s.store)
	if errors.Is(err, state.ErrKeyNotFound) {
		snap = state.Snapshot{Selected: s.config.DefaultTransformation}
		if m, ok := s.registry.Method(snap.Selected); ok {
			snap.Options = m.Defaults()
		}
		return snap, nil
	}
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("load state: %w", err)
	}
	return snap, nil
}

// ResetSelection deletes the persisted selection.
func (s *Service) ResetSelection(ctx context.Context) error {
	err := s.store.Delete(ctx, state.Key)
	if err != nil && !errors.Is(err, state.ErrKeyNotFound) {
		return fmt.Errorf("reset state: %w", err)
	}
	return nil
}

// Close releases connections held by the service.
func (s *Service) Close() error {
	var errs []error
	for _, fn := range s.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}
