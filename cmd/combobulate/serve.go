package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/DuncanWalter/combobulate/internal/journal"
	"github.com/DuncanWalter/combobulate/internal/logstore"
	"github.com/DuncanWalter/combobulate/internal/server"
	"github.com/DuncanWalter/combobulate/internal/train"
)

func runServe(args []string) error {
	defaults := server.DefaultConfig()

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", defaults.Addr, "listen address")
	dir := fs.String("store", ".logs", "log store directory")
	origin := fs.String("origin", defaults.Origin, "allowed client origin (empty allows any)")
	demo := fs.Bool("demo", false, "train an XOR session in the background and stream its progress")
	demoEpochs := fs.Int("demo-epochs", 20000, "epochs for the demo session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, progress, err := openStores(*dir)
	if err != nil {
		return err
	}
	defer progress.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hub := server.NewHub(nil)
	srv := server.New(store, hub, server.Config{Addr: *addr, Origin: *origin, Journal: progress})

	if *demo {
		go runDemo(ctx, store, progress, hub, *demoEpochs)
	}
	return srv.ListenAndServe(ctx)
}

// runDemo trains a fresh XOR session, recording and broadcasting its
// progress.
func runDemo(ctx context.Context, store *logstore.Store, progress *journal.Journal, hub *server.Hub, epochs int) {
	session := defaultSession()
	log.Printf("demo: training session %s", session)

	opts := xorOptions{epochs: epochs, seed: time.Now().UnixNano(), rate: 0.05, session: session}
	report := progress.Recorder(session, func(p train.Progress) {
		hub.Broadcast(session, p)
	}, func(err error) {
		log.Printf("demo: journal: %v", err)
	})
	model, err := trainXOR(ctx, store, opts, report)
	if err != nil {
		log.Printf("demo: %v", err)
		return
	}
	log.Printf("demo: session %s saved after %d epochs", session, model.Epoch())
}
