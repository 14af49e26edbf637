package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"fulfillment-engine/internal/reader"
	"fulfillment-engine/internal/repository"
)

// Offline accuracy report: opens the fulfillment log directly and prints the
// current overview without going through the HTTP service.
func main() {

	dbPath := flag.String("db", "../db/fulfillment.db", "path to the fulfillment metrics database")
	showHistory := flag.Bool("history", false, "also print the retained history window")
	flag.Parse()

	store := repository.NewSQLiteStore(*dbPath)
	if err := store.Init(); err != nil {
		log.Fatalf("Failed to open metric store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	overview, err := reader.New(store).Current(ctx)
	if err != nil {
		log.Fatalf("Failed to read fulfillment log: %v", err)
	}

	fmt.Printf("Fulfillment accuracy: %.2f%% (%d attempts) status=%s\n",
		overview.AccuracyRate, overview.Total, overview.Status)

	if !*showHistory {
		return
	}

	agg, err := store.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}
	for _, event := range agg.History {
		code := ""
		if event.ErrorCode != nil {
			code = " code=" + *event.ErrorCode
		}
		fmt.Printf("%s  %s%s\n", event.Timestamp, event.Status, code)
	}
}
