package config

import (
	"fmt"
	"os"
	"time"

	"github.com/olebedev/config"
	"github.com/subosito/gotenv"
)

// Defaults lists every key the application reads. Environment variables can
// only override keys present here (store.driver -> STORE_DRIVER).
const Defaults = `{
	"cart": {
		"namespace": "@GoMarketpace",
		"write_timeout": "0s"
	},
	"store": {
		"driver": "ledis",
		"ledis": {"path": "./var/ledis"},
		"bunt": {"path": "./var/cart.db"},
		"redis": {"address": "localhost:6379", "db": 0},
		"mongo": {"url": "localhost", "database": "cart", "collection": "carts", "timeout": "10s"}
	},
	"sentry": {"dsn": ""},
	"log": {"level": "INFO"},
	"metrics": {"address": ""}
}`

// Load reads .env, the defaults, file (when it exists) and finally the
// environment, later sources winning.
func Load(file string) (*config.Config, error) {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg, err := config.ParseJson(Defaults)
	if err != nil {
		return nil, err
	}

	if file != "" {
		if _, err := os.Stat(file); err == nil {
			overrides, err := config.ParseJsonFile(file)
			if err != nil {
				return nil, err
			}
			if cfg, err = cfg.Extend(overrides); err != nil {
				return nil, err
			}
		}
	}

	return cfg.Env(), nil
}

// LookupDuration reads a Go duration string ("250ms", "2s"). Missing or
// empty keys yield def, malformed values an error.
func LookupDuration(cfg *config.Config, path string, def time.Duration) (time.Duration, error) {
	raw, err := cfg.String(path)
	if err != nil || raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %v", path, err)
	}
	return d, nil
}

// Duration is LookupDuration falling back to def on malformed values.
func Duration(cfg *config.Config, path string, def time.Duration) time.Duration {
	d, err := LookupDuration(cfg, path, def)
	if err != nil {
		log.Warningf("Ignoring malformed duration, using %v: %v", def, err)
	}
	return d
}
