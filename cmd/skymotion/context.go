package main

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/SLASHOO/SkyMotion-Library/internal/apiclient"
	"github.com/SLASHOO/SkyMotion-Library/internal/identity"
	"github.com/SLASHOO/SkyMotion-Library/internal/widget"
)

type commandContext struct {
	envFile *string
	flags   *flagValues

	configOnce sync.Once
	config     config
	configErr  error
}

func newCommandContext(envFile *string, flags *flagValues) *commandContext {
	return &commandContext{envFile: envFile, flags: flags}
}

func (c *commandContext) ensureConfig() (config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = loadConfig(*c.envFile, *c.flags)
		if c.configErr != nil {
			return
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(c.config.LogLevel),
		})
		slog.SetDefault(slog.New(handler))
	})
	return c.config, c.configErr
}

// identitySource prefers a verifiable member token and falls back to the
// configured member id.
func identitySource(cfg config) identity.Source {
	if cfg.MemberToken != "" && cfg.TokenSecret != "" {
		return identity.TokenSource{Secret: cfg.TokenSecret, Token: cfg.MemberToken}
	}
	return identity.Static(cfg.MemberID)
}

func (c *commandContext) newWidget() (*widget.Widget, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	location, err := cfg.location()
	if err != nil {
		return nil, err
	}

	// Without any configured identity there is nothing to wait for.
	identityTimeout := identity.DefaultTimeout
	if cfg.MemberID == "" && cfg.MemberToken == "" {
		slog.Warn("cli: no member configured, saved moves and sessions need SKYMOTION_MEMBER_ID")
		identityTimeout = time.Millisecond
	}

	resolver := identity.NewResolver(identitySource(cfg))
	api := apiclient.New(apiclient.Config{
		BaseURL:         cfg.APIBase,
		MemberToken:     cfg.MemberToken,
		IdentityTimeout: identityTimeout,
	}, resolver)

	return widget.New(widget.Config{
		Location:        location,
		IdentityTimeout: identityTimeout,
	}, widget.Deps{
		API:      api,
		Identity: resolver,
		Catalog:  cfg.catalogSource(),
	})
}
