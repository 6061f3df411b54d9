package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/pkg/sys"

	"volgrader/internal/obs"
	"volgrader/internal/ops"
	"volgrader/internal/replay"
	"volgrader/internal/server"
	"volgrader/internal/status"
	"volgrader/internal/storage"
	"volgrader/pkg/listener"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("grader: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := ops.Parse("grader", args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if cfg.Profiling.Address != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.Profiling.AppName,
			ServerAddress:   cfg.Profiling.Address,
			Logger:          profilerLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return fmt.Errorf("pyroscope start failed: %w", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	prepared, err := replay.Prepare(cfg.ReplaySource(), replay.CodecEncoder{})
	if err != nil {
		return fmt.Errorf("prepare replay failed: %w", err)
	}
	log.Printf("%d rows loaded, %d orderbooks prepared, %d messages prepared",
		prepared.Loaded, prepared.Plan.OrderBooks, prepared.Plan.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-sys.Shutdown():
			stop()
		case <-ctx.Done():
		}
	}()

	metrics := obs.NewMetrics()
	deps := server.Deps{Metrics: metrics}
	if cfg.Progress {
		deps.Progress = newProgressBar(os.Stdout).Report
	}

	writer, err := openStorage(cfg)
	if err != nil {
		return err
	}
	if writer != nil {
		writer.Start()
		deps.Sink = writer.Publish
		defer func() {
			if err := writer.Close(); err != nil {
				log.Printf("storage close failed: %v", err)
			}
		}()
	}

	var wg sync.WaitGroup
	if cfg.StatusAddress != "" {
		statusServer := status.New(metrics, status.PlanInfo{
			Instrument: cfg.Instrument,
			Loaded:     prepared.Loaded,
			OrderBooks: prepared.Plan.OrderBooks,
			Messages:   prepared.Plan.Len(),
			Responses:  prepared.Plan.Responses,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := statusServer.Run(ctx, cfg.StatusAddress); err != nil {
				log.Printf("status server stopped: %v", err)
			}
		}()
	}

	ln, err := listener.NewServer(cfg.Network, cfg.Address)
	if err != nil {
		return err
	}
	if err := ln.Listen(); err != nil {
		return err
	}
	defer ln.Close()
	log.Printf("server listening on %s", ln.Addr())

	srv := server.New(ln, prepared, cfg.SessionConfig(), deps)
	serveErr := srv.Serve(ctx)
	stop()
	wg.Wait()

	snapshot := metrics.Snapshot()
	log.Printf("metrics: sessions=%d finished=%d aborted=%d sent=%d responses=%d stray=%d timeouts=%d response_latency=%+v",
		snapshot.SessionsStarted, snapshot.SessionsFinished, snapshot.SessionsAborted, snapshot.MessagesSent,
		snapshot.Responses, snapshot.StrayResponses, snapshot.Timeouts, snapshot.ResponseLatency)
	return serveErr
}

func openStorage(cfg ops.Config) (*storage.Writer, error) {
	var sinks []storage.Sink
	if cfg.Storage.SQLitePath != "" {
		sink, err := storage.NewSQLiteSink(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.PostgresEnabled() {
		sink, err := storage.NewPostgresSink(cfg.PostgresOption())
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return storage.NewWriter(cfg.Storage.QueueSize, sinks...), nil
}

type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...interface{})  {}
func (profilerLogger) Debugf(format string, args ...interface{}) {}
func (profilerLogger) Errorf(format string, args ...interface{}) {
	log.Printf("pyroscope: "+format, args...)
}
