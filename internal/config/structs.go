package config

import (
	"time"

	"github.com/portal-access/portal-access/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Cache     Cache
	Session   Session
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown in seconds
	URL            string // base url for the webserver
}

// Cache selects where resolution inputs are cached between requests.
type Cache struct {
	Backend   string // memory or redis
	Size      int    // max entries of the memory backend
	TTL       int    // entry lifetime in seconds
	RedisAddr string // host:port of the redis backend
	Prefix    string // key prefix of the redis backend
}

// Session settings. Sessions are issued by the external identity provider and
// read from the shared session table.
type Session struct {
	CookieName string
	Table      string
	ExpiryTime time.Duration
}
