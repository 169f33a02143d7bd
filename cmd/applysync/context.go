package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"applysync/internal/config"
)

type commandContext struct {
	dataDirFlag *string
	verbose     *bool

	once    sync.Once
	dataDir string
	cfgPath string
	cfg     config.Config
	cfgErr  error

	logOnce sync.Once
	logger  *zap.Logger
}

func newCommandContext(dataDirFlag *string, verbose *bool) *commandContext {
	return &commandContext{dataDirFlag: dataDirFlag, verbose: verbose}
}

// ensureConfig resolves the data directory, writes a default config there on
// first use and loads it.
func (c *commandContext) ensureConfig() (config.Config, error) {
	c.once.Do(func() {
		var flagValue string
		if c.dataDirFlag != nil {
			flagValue = *c.dataDirFlag
		}
		dir, err := config.ResolveDataDir(flagValue)
		if err != nil {
			c.cfgErr = fmt.Errorf("resolve data dir: %w", err)
			return
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.cfgErr = fmt.Errorf("create data dir: %w", err)
			return
		}
		c.dataDir = dir

		path, _, err := config.EnsureUserConfig(dir)
		if err != nil {
			c.cfgErr = fmt.Errorf("config bootstrap failed: %w", err)
			return
		}
		c.cfgPath = path

		cfg, err := config.Load(path)
		if err != nil {
			c.cfgErr = fmt.Errorf("config load failed (%s): %w", path, err)
			return
		}
		normalized, res := config.NormalizeAndValidate(cfg)
		if !res.OK() {
			c.cfgErr = fmt.Errorf("config %s is invalid:\n- %s", path, strings.Join(res.Errors, "\n- "))
			return
		}
		for _, w := range res.Warnings {
			c.log().Warn("config warning", zap.String("warning", w))
		}
		if strings.TrimSpace(normalized.App.DataDir) == "" {
			normalized.App.DataDir = dir
		}
		c.cfg = normalized
	})
	return c.cfg, c.cfgErr
}

func (c *commandContext) log() *zap.Logger {
	c.logOnce.Do(func() {
		level := zapcore.InfoLevel
		if c.verbose != nil && *c.verbose {
			level = zapcore.DebugLevel
		}
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		logger, err := zc.Build()
		if err != nil {
			logger = zap.NewNop()
		}
		c.logger = logger.Named("applysync")
	})
	return c.logger
}

func (c *commandContext) sync() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
