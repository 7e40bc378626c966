package pkgconfig

import "time"

// Config is the read-only view of application settings.
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetFloat(key string) float64
	GetString(key string) string
	GetDuration(key string) time.Duration
	GetBinary(key string) []byte
	GetArray(key string) []string
	GetMap(key string) map[string]string
	Close() error
}

// Defaults holds the value of every known key when the file does not set it.
//
//nolint:gochecknoglobals // read-only table
var Defaults = map[string]any{
	"server.address.http": ":8080",
	"tz":                  "UTC",
	"log.level":           "info",
	"goroutine.max":       100,

	"id.device_id":         "",
	"id.pause_on_start":    true,
	"id.request_id":        "ulid",
	"id.snowflake.enabled": false,

	"serial.timeout":            "5s",
	"serial.ticket.short":       false,
	"serial.ticket.no_sep":      false,
	"serial.ticket.lowercase":   false,
	"serial.ticket.alphabet":    false,
	"serial.ticket.retry_times": 10,
	"serial.random62.length":    35,
	"serial.hash.salt":          "",
	"serial.counter.prefix":     "",
	"serial.counter.padding":    0,
	"ledger.driver":             "memory",
	"ledger.path":               "./data/ledger",
	"ledger.sync":               true,
	"metrics.enabled":           true,
	"modules.issuer.enabled":    true,
}

// EnvBindings maps keys to the environment variables that override them.
//
//nolint:gochecknoglobals // read-only table
var EnvBindings = map[string]string{
	"id.device_id": "FASTSEND_DEVICE_ID",
	"log.level":    "GOSEND_LOG_LEVEL",
	"ledger.path":  "GOSEND_LEDGER_PATH",
}
