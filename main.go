package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/simfarm/simctl-provider/config"
	"github.com/simfarm/simctl-provider/logger"
	"github.com/simfarm/simctl-provider/models"
	"github.com/simfarm/simctl-provider/router"
	"github.com/simfarm/simctl-provider/simctl"
)

func main() {
	configPath := flag.String("config", "./config.json", "path to the provider config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("Could not load config - " + err.Error())
	}

	// Create the logs directory if it doesn't already exist
	logsFolder := fmt.Sprintf("%s/logs", cfg.EnvConfig.ProviderFolder)
	if _, err := os.Stat(logsFolder); os.IsNotExist(err) {
		os.Mkdir(logsFolder, os.ModePerm)
	}

	providerLogger, err := logger.CreateCustomLogger(fmt.Sprintf("%s/provider.log", logsFolder), cfg.EnvConfig.LogLevel)
	if err != nil {
		panic("Could not create provider logger - " + err.Error())
	}

	client := simctl.NewFromConfig(providerLogger, cfg.SimctlConfig)

	// Retry and timeout tuning is picked up on config changes. The new
	// settings are swapped in as one snapshot, in-flight requests keep the
	// one they started with.
	watcher, err := config.Watch(*configPath, providerLogger, func(newCfg models.ConfigJsonData) {
		client.SetTuning(simctl.TuningFromConfig(newCfg.SimctlConfig, client.Tuning()))
	})
	if err != nil {
		providerLogger.LogWarn("provider", "Could not watch config file - "+err.Error())
	} else {
		defer watcher.Close()
	}

	handler := router.HandleRequests(client, providerLogger)

	fmt.Printf("Starting provider on port:%v\n", cfg.EnvConfig.HostPort)
	log.Fatal(http.ListenAndServe(":"+cfg.EnvConfig.HostPort, handler))
}
