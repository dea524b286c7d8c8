// Command tracker ведет локальный кэш отправленных запросов цены и
// синхронизирует его с сервером.
//
//	tracker --server http://localhost:8080 --token $TOKEN sync
//	tracker --token $TOKEN send <requestId> <workshopId> [workshopName]
//	tracker status <requestId> <workshopId> <status>
//	tracker list
//	tracker select <requestId> <vehicleId>
//	tracker clear
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/senyabanana/repair-quotes/internal/clock"
	"github.com/senyabanana/repair-quotes/internal/tracking"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"
)

func main() {
	server := pflag.String("server", envOr("TRACKER_SERVER", "http://localhost:8080"), "base URL of the quotes API")
	token := pflag.String("token", os.Getenv("TRACKER_TOKEN"), "customer bearer token")
	dbPath := pflag.String("db", envOr("TRACKER_DB", "tracking.db"), "SQLite cache file")
	snapshot := pflag.String("snapshot", "", "use a CBOR snapshot file instead of SQLite")
	timeout := pflag.Duration("timeout", 10*time.Second, "server request timeout")
	pflag.Parse()

	logger := log.New(os.Stderr, "tracker: ", log.LstdFlags)
	ctx := context.Background()

	var persister tracking.Persister
	if *snapshot != "" {
		persister = tracking.NewFilePersister(*snapshot)
	} else {
		p, err := tracking.OpenSQLite(*dbPath)
		if err != nil {
			logger.Fatalf("open cache: %v", err)
		}
		defer p.Close()
		persister = p
	}

	store, err := tracking.Open(ctx, persister, clock.Real(), logger)
	if err != nil {
		logger.Fatalf("load cache: %v", err)
	}

	args := pflag.Args()
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "sync":
		if *token == "" {
			logger.Fatal("sync requires --token or TRACKER_TOKEN")
		}
		n, err := store.Sync(ctx, tracking.NewServerClient(*server, *token, *timeout))
		if err != nil {
			logger.Fatalf("sync: %v", err)
		}
		logger.Printf("received %d entries from %s", n, *server)
		printEntries(store)
	case "send":
		if len(args) < 3 || len(args) > 4 {
			logger.Fatal("usage: tracker send <requestId> <workshopId> [workshopName]")
		}
		if *token == "" {
			logger.Fatal("send requires --token or TRACKER_TOKEN")
		}
		entry := tracking.Entry{RequestID: args[1], WorkshopID: args[2], LinkedRequestID: args[1]}
		if len(args) == 4 {
			entry.WorkshopName = args[3]
		}
		client := tracking.NewServerClient(*server, *token, *timeout)
		if err := store.Track(ctx, entry, func(ctx context.Context) error {
			return client.PublishRequest(ctx, entry.RequestID)
		}); err != nil {
			logger.Fatalf("send: %v", err)
		}
		printEntries(store)
	case "status":
		if len(args) != 4 {
			logger.Fatal("usage: tracker status <requestId> <workshopId> <status>")
		}
		key := tracking.Key{RequestID: args[1], WorkshopID: args[2]}
		if err := store.UpdateStatus(ctx, key, tracking.Status(args[3]), nil); err != nil {
			logger.Fatalf("status: %v", err)
		}
		printEntries(store)
	case "list":
		printEntries(store)
	case "select":
		if len(args) != 3 {
			logger.Fatal("usage: tracker select <requestId> <vehicleId>")
		}
		if err := store.SetSelection(ctx, tracking.Selection{RequestID: args[1], VehicleID: args[2]}); err != nil {
			logger.Fatalf("select: %v", err)
		}
	case "clear":
		if err := store.ClearAll(ctx); err != nil {
			logger.Fatalf("clear: %v", err)
		}
	default:
		logger.Fatalf("unknown command %q", args[0])
	}
}

func printEntries(store *tracking.Store) {
	if sel := store.Selection(); sel.RequestID != "" {
		fmt.Printf("selected request %s, vehicle %s\n", sel.RequestID, sel.VehicleID)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUEST\tWORKSHOP\tNAME\tSTATUS\tACTIVE\tRETRIES\tUPDATED")
	for _, e := range store.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t%d\t%s\n", e.RequestID, e.WorkshopID, e.WorkshopName, e.Status,
			e.Status.IsActive(), e.RetryCount, e.UpdatedAt.Format(time.RFC3339))
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
