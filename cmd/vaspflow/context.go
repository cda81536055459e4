package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"vaspflow/internal/calc"
	"vaspflow/internal/config"
	"vaspflow/internal/logging"
)

type commandContext struct {
	configFlag *string

	once      sync.Once
	config    *config.Config
	logger    *slog.Logger
	resolveEr error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.resolveEr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.resolveEr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.resolveEr
}

func (c *commandContext) pipeline(opts ...calc.PipelineOption) (*calc.Pipeline, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	workdir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return calc.NewPipeline(c.config, c.logger, workdir, opts...)
}
