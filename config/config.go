package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/simfarm/simctl-provider/logger"
	"github.com/simfarm/simctl-provider/models"
)

// Load reads the provider config file and fills in defaults for anything
// not set.
func Load(path string) (models.ConfigJsonData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ConfigJsonData{}, fmt.Errorf("Could not read config file `%s` - %v", path, err)
	}

	var cfg models.ConfigJsonData
	if err := json.Unmarshal(data, &cfg); err != nil {
		return models.ConfigJsonData{}, fmt.Errorf("Could not unmarshal config file `%s` - %v", path, err)
	}

	if cfg.EnvConfig.HostPort == "" {
		cfg.EnvConfig.HostPort = "10001"
	}
	if cfg.EnvConfig.ProviderFolder == "" {
		cfg.EnvConfig.ProviderFolder = "."
	}
	if cfg.EnvConfig.LogLevel == "" {
		cfg.EnvConfig.LogLevel = "info"
	}
	if cfg.SimctlConfig.ToolName == "" {
		cfg.SimctlConfig.ToolName = "xcrun"
	}

	return cfg, nil
}

// Watch reloads the config file on write events and hands each successfully
// parsed config to onChange. The returned watcher should be closed by the
// caller on shutdown.
func Watch(path string, log *logger.CustomLogger, onChange func(models.ConfigJsonData)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("Could not create config watcher - %v", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) {
					cfg, err := Load(path)
					if err != nil {
						log.LogError("config_watch", fmt.Sprintf("Could not reload config after change - %v", err))
						continue
					}
					log.LogInfo("config_watch", fmt.Sprintf("Reloaded config from `%s`", path))
					onChange(cfg)
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.LogError("config_watch", fmt.Sprintf("Config watcher error - %v", watchErr))
			}
		}
	}()

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("Could not watch config file `%s` - %v", path, err)
	}

	return watcher, nil
}
