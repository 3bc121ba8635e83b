// Package fiber writes one zerolog access log line per request handled by a fiber app.
package fiber

import (
	"bytes"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/portal-access/portal-access/internal/logger"
)

// HeaderPerformance carries the handling time of the request in seconds.
const HeaderPerformance = "X-Performance"

// Config configures the access log middleware.
type Config struct {
	// Config selects the access log outputs.
	Config logger.Log

	// CacheControlError is the Cache-Control value of responses the error handler failed on.
	// Default: "max-age=0"
	CacheControlError string

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string

	// UserID returns the authenticated user of the request, empty for anonymous requests.
	UserID func(c *fiber.Ctx) string
}

func (cfg Config) withDefaults() Config {
	if cfg.CacheControlError == "" {
		cfg.CacheControlError = "max-age=0"
	}

	return cfg
}

// New creates the access log middleware. Without an enabled output it only sets HeaderPerformance.
func New(config Config) fiber.Handler {
	cfg := config.withDefaults()
	accessLog := zerolog.New(zerolog.MultiLevelWriter(outputs(&cfg.Config)...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)
	checkAlive := []byte(cfg.CheckAliveURI)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
				c.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start).Seconds()
		c.Response().Header.Set(HeaderPerformance, strconv.FormatFloat(elapsed, 'f', 6, 64))

		if cfg.Config.DisableCheckAlive && bytes.Equal(c.Request().RequestURI(), checkAlive) {
			return nil
		}

		// c.Path() is the path as sent; fasthttp normalizes the one used for routing.
		uri := c.Path()
		if q := c.Request().URI().QueryString(); len(q) > 0 {
			uri += "?" + string(q)
		}

		e := accessLog.Log().
			Str("IP", c.IP()).
			Int("status", c.Response().StatusCode()).
			Float64(HeaderPerformance, elapsed).
			Str("URI", uri).
			Str("method", c.Method()).
			Bytes("host", c.Request().Host()).
			Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent))

		if cfg.UserID != nil {
			if id := cfg.UserID(c); id != "" {
				e.Str("user_id", id)
			}
		}

		if chainErr != nil {
			e.Err(chainErr)
		}

		e.Send()

		return nil
	}
}

func outputs(cfg *logger.Log) []io.Writer {
	var writers []io.Writer

	if cfg.File.Enabled {
		if w := rollingAccessFile(cfg); w != nil {
			writers = append(writers, w)
		}
	}

	if !cfg.Console.Enabled || !cfg.EnableAccessLogToConsole {
		return writers
	}

	if cfg.Console.UseConsoleWriter {
		return append(writers, zerolog.ConsoleWriter{
			Out:          os.Stdout,
			TimeFormat:   zerolog.TimeFieldFormat,
			PartsExclude: []string{zerolog.LevelFieldName},
		})
	}

	return append(writers, os.Stdout)
}

func rollingAccessFile(cfg *logger.Log) io.Writer {
	if cfg.File.Path != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create access log directory")

			return nil
		}
	}

	return &lumberjack.Logger{
		Filename:   path.Join(cfg.File.Path, cfg.File.AccessLog),
		MaxSize:    cfg.File.AccessMaxSize,
		MaxAge:     cfg.File.AccessMaxAge,
		MaxBackups: cfg.File.AccessMaxBackups,
	}
}
