// cmd/tankersim/main.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// tankersim simulates the telemetry of an aerial refueling tanker flying
// a refueling track until it reaches Bingo fuel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goforj/godump"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tankerops/tankersim/pkg/archive"
	"github.com/tankerops/tankersim/pkg/log"
	"github.com/tankerops/tankersim/pkg/math"
	"github.com/tankerops/tankersim/pkg/rand"
	"github.com/tankerops/tankersim/pkg/server"
	"github.com/tankerops/tankersim/pkg/sim"
	"github.com/tankerops/tankersim/pkg/telemetry"
	"github.com/tankerops/tankersim/pkg/util"
)

const (
	exitOK          = 0
	exitConfigError  = 1
	exitRuntimeError = 2
	exitInterrupted  = 130
)

var (
	logLevel   = flag.String("loglevel", "", "logging level: debug, info, warn, error (overrides the config file)")
	logDir     = flag.String("logdir", "", "log file directory")
	configFile = flag.String("config", "", "configuration file (JSON, YAML, or TOML)")
	httpAddr   = flag.String("http", "", "address for the status server, e.g. :8086")
	console    = flag.Bool("console", false, "mirror log output to stderr")
	showConfig = flag.Bool("showconfig", false, "print the launch configuration and exit")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [<device name> <device key>]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	os.Exit(run(flag.Args(), os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	config, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}

	var consoleW io.Writer
	if *console {
		consoleW = os.Stderr
	}
	lg := log.New(log.Options{Level: config.LogLevel, Dir: *logDir, Console: consoleW})
	defer lg.CatchAndReportCrash()

	switch len(args) {
	case 0:
	case 2:
		config.Telemetry.DeviceName, config.Telemetry.DeviceKey = args[0], args[1]
	default:
		usage()
		return exitConfigError
	}
	if *httpAddr != "" {
		config.HTTPAddr = *httpAddr
	}

	var e util.ErrorLogger
	config.Validate(&e)
	if e.HaveErrors() {
		e.PrintErrors(lg, os.Stderr)
		return exitConfigError
	}

	r := rand.New()
	if config.Mission.Seed != 0 {
		r = rand.NewSeeded(config.Mission.Seed)
	}
	launch, err := config.Launch(r, time.Now())
	if err != nil {
		lg.Errorf("%v", err)
		return exitConfigError
	}
	lg.Debug("Launch configuration", slog.String("launch", godump.DumpStr(launch)))

	if *showConfig {
		godump.Fdump(stdout, launch)
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fly(ctx, config, launch, r, stdout, lg); errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Caught signal, mission aborted")
		return exitInterrupted
	} else if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		return exitRuntimeError
	}
	return exitOK
}

// fly sets up the telemetry sinks and runs the mission to completion.
func fly(ctx context.Context, config Config, launch LaunchParams, r *rand.Rand, stdout io.Writer,
	lg *log.Logger) error {
	ac := launch.Aircraft()
	sinks := telemetry.Fanout{telemetry.NewLogSink(lg, slog.LevelDebug)}

	var recorder *telemetry.Recorder
	if config.Telemetry.RecordDir != "" {
		var err error
		if recorder, err = telemetry.NewRecorder(config.RecordingPath(launch)); err != nil {
			return err
		}
		defer recorder.Close()
		sinks = append(sinks, recorder)
	}

	var db *telemetry.SQLiteSink
	if config.Telemetry.SQLitePath != "" {
		var err error
		if db, err = telemetry.OpenSQLite(config.Telemetry.SQLitePath); err != nil {
			return err
		}
		defer db.Close()
		sinks = append(sinks, db)
	}

	if config.Telemetry.URL != "" {
		hs := telemetry.NewHTTPSink(config.Telemetry.URL, config.Telemetry.DeviceName, config.Telemetry.DeviceKey)
		hs.Headers = config.Telemetry.Headers
		sinks = append(sinks, hs)
	}

	var status *server.Server
	if config.HTTPAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := telemetry.NewMetricsSink(reg)
		if err != nil {
			return err
		}
		status = server.New(server.Options{Gatherer: reg}, lg)
		sinks = append(sinks, metrics, status)
	}

	dispatcher := sim.NewDispatcher(sinks, sim.DispatcherOptions{
		QueueSize:   config.Telemetry.QueueSize,
		SendTimeout: config.Telemetry.SendTimeout,
	}, lg)
	simConfig := config.SimulatorConfig(r)
	simConfig.Console = stdout
	fs := sim.NewFlightSimulator(ac, simConfig, dispatcher, lg)

	if status != nil {
		status.Attach(fs)
		serverCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			defer lg.CatchAndReportCrash()
			if err := status.ListenAndServe(serverCtx, config.HTTPAddr); err != nil {
				lg.Errorf("HTTP server: %v", err)
			}
		}()
	}

	fmt.Fprintf(stdout, "Aircraft %s Arrive ARIP at %s Zulu\n", ac.TailNumber, ac.LaunchTime.Format("15:04"))
	fmt.Fprintf(stdout, "Speed %d kts, Heading %d degrees, Altitude %d ft\n\n", ac.SpeedKts(), ac.Heading, ac.Altitude)
	lg.Info("Mission started", slog.Any("aircraft", ac), slog.String("arip", ac.Position().DDString()))

	sched := sim.Scheduler{InitialDelay: config.Mission.InitialDelay, Period: config.Mission.Period}
	_, runErr := sched.Run(ctx, fs)

	// Give outstanding telemetry a chance to be delivered.
	closeCtx, cancel := context.WithTimeout(context.Background(), config.Telemetry.SendTimeout+5*time.Second)
	defer cancel()
	if err := dispatcher.Close(closeCtx); err != nil {
		lg.Warnf("Telemetry still outstanding at exit: %v", err)
	}
	stats := dispatcher.Stats()
	lg.Info("Telemetry delivery", slog.Int64("delivered", stats.Delivered),
		slog.Int64("failed", stats.Failed), slog.Int64("dropped", stats.Dropped))

	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(stdout, "\nMission complete for aircraft %s\n", ac.TailNumber)
	final := fs.Aircraft()
	args := []any{slog.Int("elapsed_flight_minutes", fs.TotalFlightMinutes()),
		slog.Float64("fuel_remaining", fs.FuelRemaining())}
	if dist, az, _, err := math.WGS84.Inverse(ac.Position(), final.Position()); err == nil {
		args = append(args, slog.String("from_arip", fmt.Sprintf("%.1f nm %s",
			dist/math.NauticalMilesToMeters, math.Compass(az))))
	}
	lg.Info("Mission complete", args...)

	if db != nil {
		if recs, err := db.Records(ctx, ac.TailNumber); err != nil {
			lg.Errorf("%s: %v", config.Telemetry.SQLitePath, err)
		} else {
			lg.Info("Telemetry stored", slog.String("db", config.Telemetry.SQLitePath), slog.Int("records", len(recs)))
		}
		if config.Telemetry.CSVPath != "" {
			if err := exportCSV(ctx, db, config.Telemetry.CSVPath); err != nil {
				lg.Errorf("CSV export: %v", err)
			}
		}
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			lg.Errorf("%s: %v", recorder.Path(), err)
		} else {
			lg.Info("Flight recording closed", slog.String("path", recorder.Path()),
				slog.Int("records", recorder.Count()))
			archiveRecording(ctx, config, launch, recorder.Path(), lg)
		}
	}

	return nil
}

func exportCSV(ctx context.Context, db *telemetry.SQLiteSink, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := db.ExportCSV(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// archiveRecording uploads the flight recording to the configured
// backend, if any. Failures are logged but don't affect the mission's
// outcome.
func archiveRecording(ctx context.Context, config Config, launch LaunchParams, filename string, lg *log.Logger) {
	backend, err := archive.NewBackend(ctx, config.ArchiveConfig())
	if err != nil {
		lg.Errorf("Archive: %v", err)
		return
	} else if backend == nil {
		return
	}
	defer backend.Close()

	key := archive.Key(config.Archive.Prefix, launch.TailNumber, launch.LaunchTime)
	n, err := archive.Upload(ctx, backend, key, filename)
	if err != nil {
		lg.Errorf("Archive: %v", err)
		return
	}
	lg.Info("Archived flight recording", slog.String("backend", backend.Name()),
		slog.String("key", key), slog.String("size", util.ByteCount(n)))
}
