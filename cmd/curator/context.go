package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/extraction"
	"curator/internal/ledger"
	"curator/internal/logging"
	"curator/internal/notifications"
	"curator/internal/pipeline"
	"curator/internal/services/localstore"
	"curator/internal/verify"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// session bundles the wired pipeline for one CLI invocation. Close
// releases the ledger lock.
type session struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *localstore.Store
	ledger       *ledger.Store
	orchestrator *pipeline.Orchestrator
}

func (s *session) Close() error {
	if s == nil || s.ledger == nil {
		return nil
	}
	return s.ledger.Close()
}

// openSession wires the filesystem backend, the retrying extraction
// client, the verifier, the ledger, and the orchestrator together.
func (c *commandContext) openSession() (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	store, err := localstore.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	client := extraction.NewClient(store,
		extraction.WithMaxAttempts(cfg.Extraction.RetryAttempts),
		extraction.WithBaseDelay(time.Duration(cfg.Extraction.RetryBaseSeconds)*time.Second),
	)
	verifier := verify.NewVerifier(client, logger)

	ledgerStore, err := ledger.Open(cfg)
	if err != nil {
		return nil, err
	}

	orchestrator, err := pipeline.New(cfg, pipeline.Deps{
		Lister:   store,
		Store:    store,
		Verifier: verifier,
		Ledger:   ledgerStore,
		Notifier: notifications.NewService(cfg),
		Logger:   logger,
	})
	if err != nil {
		_ = ledgerStore.Close()
		return nil, err
	}

	return &session{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		ledger:       ledgerStore,
		orchestrator: orchestrator,
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
