package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedEngine error if config db.gormengine is not mysql, postgres or sqlite.
	ErrUnsupportedEngine = errors.New("toml config db.gormengine must be mysql, postgres or sqlite")

	// ErrUnsupportedCacheBackend error if config cache.backend is not memory or redis.
	ErrUnsupportedCacheBackend = errors.New("toml config cache.backend must be memory or redis")

	// ErrEmptyRedisAddr error if the redis cache backend has no address.
	ErrEmptyRedisAddr = errors.New("toml config cache.redisaddr can not be empty for the redis backend")
)
