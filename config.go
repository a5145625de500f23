package main

import (
	"os"

	settings "github.com/olebedev/config"
	"github.com/tryanzu/cart/core/config"
	"github.com/tryanzu/cart/deps"
)

// configFile is the JSON file read at boot, CART_CONFIG or ./config.json.
func configFile() string {
	file := os.Getenv("CART_CONFIG")
	if file == "" {
		file = "./config.json"
	}
	return file
}

// watchConfig keeps the log level in sync with the config file while the
// shell runs. A missing file is not watched.
func watchConfig(file string) func() {
	if _, err := os.Stat(file); err != nil {
		return func() {}
	}

	stop, err := config.Watch(file, func(cfg *settings.Config) {
		level := cfg.UString("log.level", "INFO")
		if err := deps.SetLogLevel(level); err != nil {
			log.Errorf("Ignoring log.level %q: %v", level, err)
			return
		}
		log.Noticef("Log level set to %s", level)
	})
	if err != nil {
		log.Warningf("Not watching %s: %v", file, err)
		return func() {}
	}
	return stop
}
