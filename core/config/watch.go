package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/olebedev/config"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("config")

// Watch reloads file on every write and hands the fresh config to reload.
// The returned func stops watching.
func Watch(file string, reload func(*config.Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(file); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					cfg, err := Load(file)
					if err != nil {
						log.Errorf("Could not reload %s: %v", file, err)
						continue
					}
					log.Infof("Reloaded %s", event.Name)
					reload(cfg)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error(err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
