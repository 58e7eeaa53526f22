package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DuncanWalter/combobulate/internal/journal"
	"github.com/DuncanWalter/combobulate/internal/logstore"
	"github.com/DuncanWalter/combobulate/internal/nn"
	"github.com/DuncanWalter/combobulate/internal/optim"
	"github.com/DuncanWalter/combobulate/internal/tensor"
	"github.com/DuncanWalter/combobulate/internal/train"
)

var xorExamples = []train.Example{
	{Input: tensor.Vector{0, 0}, Target: tensor.Vector{0}},
	{Input: tensor.Vector{0, 1}, Target: tensor.Vector{1}},
	{Input: tensor.Vector{1, 0}, Target: tensor.Vector{1}},
	{Input: tensor.Vector{1, 1}, Target: tensor.Vector{0}},
}

// xorLayers is the net trained by the xor command and the serve demo.
func xorLayers() []nn.Factory {
	return []nn.Factory{
		nn.Guard(0, 1),
		nn.Dense(16),
		nn.LeakyReLU(nn.LeakyReLUSlope),
		nn.Dense(1),
	}
}

type xorOptions struct {
	epochs  int
	seed    int64
	rate    float64
	inertia float64
	session string
}

// trainXOR trains the XOR net for a session, resuming from its stored
// content if there is any, and saves the result.
func trainXOR(ctx context.Context, store *logstore.Store, opts xorOptions, report func(train.Progress)) (*train.Model, error) {
	var content string
	switch prev, err := store.Get(opts.session); {
	case err == nil:
		content = prev.SerializedContent
	case !errors.Is(err, logstore.ErrNotFound):
		return nil, err
	}

	net, err := nn.NewNet(nn.NetConfig{
		InputSize: 2,
		Content:   content,
		Rand:      tensor.NewRand(opts.seed),
		Layers:    xorLayers(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build net: %w", err)
	}

	cfg := train.DefaultConfig()
	cfg.Schedule = optim.Constant{LearningRate: opts.rate, Inertia: opts.inertia}
	cfg.Batch = func(int) []train.Example { return xorExamples }
	model, err := train.NewModel(net, cfg)
	if err != nil {
		return nil, err
	}

	if err := model.Train(ctx, opts.epochs, report); err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	serialized, err := net.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize net: %w", err)
	}
	_, err = store.Update(opts.session, logstore.Update{
		AgentType:               logstore.Contextless,
		Simplified:              true,
		AdditionalEpochsTrained: model.Epoch(),
		SerializedContent:       serialized,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", opts.session, err)
	}
	return model, nil
}

// openStores opens the log store in dir and the progress journal inside it.
func openStores(dir string) (*logstore.Store, *journal.Journal, error) {
	store, err := logstore.Open(logstore.Config{Dir: dir})
	if err != nil {
		return nil, nil, err
	}
	progress, err := journal.Open(journal.Config{Path: filepath.Join(store.Dir(), "progress.sqlite3")})
	if err != nil {
		return nil, nil, err
	}
	return store, progress, nil
}

func defaultSession() string {
	return "xor_" + strings.ReplaceAll(uuid.NewString(), "-", "_")
}

func runXOR(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("xor", flag.ContinueOnError)
	epochs := fs.Int("epochs", 2000, "epochs to train")
	seed := fs.Int64("seed", time.Now().UnixNano(), "seed for weight initialisation")
	rate := fs.Float64("rate", 0.1, "learning rate")
	inertia := fs.Float64("inertia", 0, "fraction of deltas carried between epochs")
	session := fs.String("session", "", "session name (default: random)")
	dir := fs.String("store", ".logs", "log store directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *session == "" {
		*session = defaultSession()
	}

	store, progress, err := openStores(*dir)
	if err != nil {
		return err
	}
	defer progress.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := xorOptions{epochs: *epochs, seed: *seed, rate: *rate, inertia: *inertia, session: *session}
	report := progress.Recorder(*session, func(p train.Progress) {
		log.Printf("epoch %d: loss %.6f, mean abs error %.6f (%s)", p.Epoch, p.MeanLoss, p.MeanAbsError, p.Elapsed.Round(time.Millisecond))
	}, func(err error) {
		log.Printf("journal: %v", err)
	})
	model, err := trainXOR(ctx, store, opts, report)
	if err != nil {
		return err
	}

	predict := train.Predictor(model.Net())
	for _, ex := range xorExamples {
		fmt.Fprintf(out, "%v -> %.4f (want %v)\n", []float64(ex.Input), predict(ex.Input)[0], ex.Target[0])
	}
	result := train.Evaluate(model.Net(), xorExamples, train.AbsoluteError)
	fmt.Fprintf(out, "session %s: %d epochs, mean abs error %.4f\n", *session, model.Epoch(), result.MeanAbsError)
	return nil
}
