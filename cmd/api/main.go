package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"fulfillment-engine/internal/catalog"
	"fulfillment-engine/internal/config"
	"fulfillment-engine/internal/domain"
	"fulfillment-engine/internal/mailer"
	"fulfillment-engine/internal/metrics"
	"fulfillment-engine/internal/pipeline"
	"fulfillment-engine/internal/reader"
	"fulfillment-engine/internal/report"
	"fulfillment-engine/internal/repository"
	"fulfillment-engine/internal/router"
	"fulfillment-engine/internal/util"
)

func LoggerInitialize() (util.ServiceLogger, error) {

	var serviceLogger util.ServiceLogger

	ConstructAndCreateLogFolder()

	if err := serviceLogger.Init("fulfillment.log", false); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		return util.ServiceLogger{}, err
	}

	serviceLogger.LogEvent(util.LOG_LEVEL_INFO, "Service started")

	currentTime := time.Now().Format(time.RFC3339)

	fmt.Fprintf(os.Stderr, "\n%s: Fulfillment Engine started \n", currentTime)

	return serviceLogger, nil

}

func main() {

	logger, err := LoggerInitialize()
	if err != nil {
		fmt.Println("Error while initializing the logger..", err)
		return
	}

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	storageType := os.Getenv("STORAGE_TYPE")
	if storageType == "" {
		storageType = "sqlite"
	}

	var metricStore domain.MetricStore

	switch storageType {
	case "sqlite":
		metricStore = repository.NewSQLiteStore(cfg.DBPath)
	case "inmemory":
		metricStore = repository.NewMemoryStore()
	default:
		log.Fatalf("Unknown storage type: %s", storageType)
	}

	if err := metricStore.Init(); err != nil {
		log.Fatalf("Failed to initialize metric store: %v", err)
	}
	defer metricStore.Close()

	resolver := catalog.NewAirtableResolver(cfg.AirtableAPIKey, cfg.AirtableBaseID, cfg.AirtableTableName)
	sender := mailer.NewResendMailer(cfg.ResendAPIKey, cfg.SenderEmail)
	reporter := report.NewLogReporter(&logger)

	pipe := pipeline.New(resolver, sender, metricStore, reporter, &logger, cfg.CollaboratorTimeout)

	metrics.Register()

	router.Run(":"+cfg.Port, router.Deps{
		Pipeline:      pipe,
		Reader:        reader.New(metricStore),
		Logger:        &logger,
		ServiceKey:    cfg.ServiceKey,
		WebhookSecret: cfg.WebhookSecret,
	})
}

func ConstructAndCreateLogFolder() {
	logPath := ".." + string(os.PathSeparator) + "log"
	util.SetLoggerPath(logPath)
	util.CheckAndCreateLogFolder(logPath)
	util.SetCommonLoggerAttributes(3)
}
