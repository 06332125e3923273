package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/mediasearch/pkg/config"
)

// configWatcher signals on Changes whenever the config file is written or
// replaced.
type configWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}
}

func watchConfig(path string) (*configWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching config file %s: %w", path, err)
	}

	cw := &configWatcher{
		path:    path,
		watcher: watcher,
		changes: make(chan struct{}, 1),
	}
	go cw.loop()
	return cw, nil
}

// Changes is closed when the watcher is closed.
func (cw *configWatcher) Changes() <-chan struct{} {
	return cw.changes
}

func (cw *configWatcher) Close() error {
	return cw.watcher.Close()
}

func (cw *configWatcher) loop() {
	defer close(cw.changes)
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.relevant(event) {
				continue
			}
			select {
			case cw.changes <- struct{}{}:
			default:
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config file watcher: %v", err)
		}
	}
}

// relevant reports whether event should trigger a reload. Editors often
// replace the file with an atomic rename, which drops it from the watch list.
func (cw *configWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	logger.Debugf("config file changed: %s (event: %s)", event.Name, event.Op.String())

	if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
		// Small delay to ensure the new file is fully written
		time.Sleep(200 * time.Millisecond)

		if _, err := os.Stat(cw.path); os.IsNotExist(err) {
			logger.Warnf("config file was removed and not replaced, skipping reload")
			return false
		}
		if err := cw.watcher.Add(cw.path); err != nil {
			logger.Warnf("failed to re-add config file to watcher: %v", err)
		}
		return true
	}

	// Writes can arrive in bursts
	time.Sleep(100 * time.Millisecond)
	return true
}

// reloadConfig applies the settings that can change while the shell runs.
// The API URL and the storage directory are bound at startup.
func (sh *shell) reloadConfig() {
	cfg, err := config.LoadConfig(sh.configPath)
	if err != nil {
		logger.Errorf("Failed to reload configuration: %v", err)
		return
	}

	old := sh.app.cfg
	if cfg.APIURL != old.APIURL || cfg.StorageDir != old.StorageDir {
		logger.Warnf("api_url and storage_dir changes take effect after restarting the shell")
		cfg.APIURL = old.APIURL
		cfg.StorageDir = old.StorageDir
	}

	sh.app.cfg = cfg
	applyLogLevel(cfg)
	sh.ctl.SetAutoRetry(cfg.Search.AutoRetryEnabled())
	logger.Infof("Configuration reloaded")
}
