// Command tinylogd is a demo harness: it spins up a Logger, registers a
// handful of synthetic tasks and topics, and drives them at a configurable
// rate until interrupted, printing periodic metrics snapshots the way the
// teacher's demo command prints periodic device status.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coredump-systems/tinylog"
	"github.com/coredump-systems/tinylog/internal/logging"
)

func main() {
	var (
		rate        = flag.Int("rate", 1000, "records per second per task")
		numTasks    = flag.Int("tasks", 4, "number of synthetic producer goroutines")
		direct      = flag.Bool("direct", false, "use Direct mode (no worker goroutine)")
		verbose     = flag.Bool("v", false, "verbose logging")
		queueDepth  = flag.Int("queue", 4096, "queue capacity")
		outFile     = flag.String("out", "", "output file (defaults to stdout)")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	var out *os.File = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			logger.Error("failed to open output file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	cfg := tinylog.DefaultConfig()
	cfg.NumTasks = *numTasks + 1
	cfg.QueueCapacity = *queueDepth
	cfg.Direct = *direct

	tl, err := tinylog.Init(cfg, tinylog.NewWriterSink(out))
	if err != nil {
		logger.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer tl.Done()

	topic, err := tl.RegisterTopic("demo")
	if err != nil {
		logger.Warn("failed to register topic, proceeding without one", "error", err)
	}

	logger.Info("starting synthetic producers",
		"tasks", *numTasks, "rate_per_task", *rate, "direct", *direct)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < *numTasks; i++ {
		go runProducer(ctx, tl, topic, i, *rate)
	}

	statusTicker := time.NewTicker(2 * time.Second)
	defer statusTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
			tl.Done()
			printSnapshot(logger, tl)
			return
		case <-statusTicker.C:
			printSnapshot(logger, tl)
		}
	}
}

func runProducer(ctx context.Context, tl *tinylog.Logger, topic tinylog.Topic, index, rate int) {
	taskID := tl.RegisterTask(fmt.Sprintf("producer-%d", index))
	taskCtx := tinylog.Bind(ctx, taskID)

	if rate <= 0 {
		rate = 1
	}
	interval := time.Second / time.Duration(rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tl.Begin(taskCtx, tinylog.LevelInfo, topic).
				Push(seq).
				PushStaticString("tick").
				End()
			seq++
		}
	}
}

func printSnapshot(logger *logging.Logger, tl *tinylog.Logger) {
	snap := tl.Metrics().Snapshot()
	logger.Info("metrics",
		"atoms_pushed", snap.AtomsPushed,
		"atoms_dropped", snap.AtomsDropped,
		"records_emitted", snap.RecordsEmitted,
		"records_truncated", snap.RecordsTruncated,
		"avg_queue_depth", snap.AvgQueueDepth,
		"max_queue_depth", snap.MaxQueueDepth,
	)
}
