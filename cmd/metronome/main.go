// Command metronome polls GPIO buttons, drives the tempo pulse output
// and beat LEDs, and publishes control changes to MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/metronome/internal/config"
	"github.com/sweeney/metronome/internal/display"
	"github.com/sweeney/metronome/internal/engine"
	"github.com/sweeney/metronome/internal/gpio"
	"github.com/sweeney/metronome/internal/logger"
	"github.com/sweeney/metronome/internal/mqtt"
	"github.com/sweeney/metronome/internal/status"
	"github.com/sweeney/metronome/internal/telemetry"
	"github.com/sweeney/metronome/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())

	if cfg.PrintDefaults {
		printDefaults(cfg)
		return
	}

	if err := run(cfg); err != nil {
		logger.Fatal().Err(err).Msg("fatal")
	}
}

func run(cfg *config.Config) error {
	// Initialize GPIO
	reader, err := gpio.NewRealReader(gpio.ButtonPins{
		Increase: cfg.PinIncrease,
		Decrease: cfg.PinDecrease,
		Mode:     cfg.PinMode,
		Option:   cfg.PinOption,
	})
	if err != nil {
		return fmt.Errorf("init gpio buttons: %w", err)
	}
	defer reader.Close()

	outputPins := gpio.DefaultOutputPins
	outputPins.Pulse = cfg.PinPulse
	writer, err := gpio.NewRealWriter(outputPins)
	if err != nil {
		return fmt.Errorf("init gpio outputs: %w", err)
	}
	defer writer.Close()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.PollMs,
		HeartbeatMs: cfg.HeartbeatMs,
		TickRate:    cfg.TickRate(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		TelemetryDB: telemetryPath(cfg),
	})

	// Opt-in local telemetry
	var repo telemetry.Repository
	if cfg.Telemetry {
		repo, err = telemetry.NewRepository(cfg.TelemetryDB)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer repo.Close()
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		logger.Info().Msg("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http status server listening")
	}

	eng := engine.New(engine.Scaled(cfg.TickRate()))

	logger.Info().
		Int64("poll_ms", cfg.PollMs).
		Int64("tick_rate", cfg.TickRate()).
		Str("broker", cfg.Broker).
		Int64("heartbeat_ms", cfg.HeartbeatMs).
		Msg("started")

	ticker := time.NewTicker(time.Duration(cfg.PollMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	heartbeat := time.Duration(cfg.HeartbeatMs) * time.Millisecond
	return runLoop(eng, reader, writer, publisher, publisher, tracker, repo, heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(eng *engine.Engine, reader gpio.Reader, writer gpio.Writer, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, repo telemetry.Repository, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	prev := eng.Snapshot()
	lastHeartbeat := now()
	resetPending := false

	for {
		select {
		case s := <-sig:
			// SIGHUP is the external reset line: defaults are forced on
			// the next tick, overriding whatever is mid-flight.
			if s == syscall.SIGHUP {
				logger.Info().Msg("reset requested")
				resetPending = true
				continue
			}
			logger.Info().Str("signal", s.String()).Msg("shutting down")
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				logger.Warn().Err(err).Msg("failed to publish shutdown event")
			} else {
				logger.Info().Msg("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			buttons, err := reader.Read()
			if err != nil {
				logger.Error().Err(err).Msg("gpio read error")
				continue
			}

			snap := eng.Tick(engine.Inputs{
				Increase: buttons.Increase,
				Decrease: buttons.Decrease,
				Mode:     buttons.Mode,
				Option:   buttons.Option,
				Reset:    resetPending,
			})
			resetPending = false

			if err := writer.SetPulse(snap.PulseOutput); err != nil {
				logger.Error().Err(err).Msg("gpio pulse write error")
			}
			if err := writer.SetBeatLEDs(display.BeatLEDs(snap)); err != nil {
				logger.Error().Err(err).Msg("gpio led write error")
			}

			for _, event := range engine.Diff(prev, snap) {
				logger.Info().
					Str("event", string(event.Type)).
					Int("bpm", event.State.BPM).
					Str("mode", event.State.Mode.String()).
					Str("time_signature", event.State.TimeSignature.String()).
					Msg("control event")
				if err := publisher.Publish(event, t); err != nil {
					logger.Warn().Err(err).Msg("publish error")
				}
				if repo != nil {
					if err := repo.Store(context.Background(), telemetry.RecordFromEvent(event, t)); err != nil {
						logger.Warn().Err(err).Msg("telemetry store error")
					}
				}
			}
			prev = snap

			if tracker != nil {
				tracker.Apply(snap)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					logger.Info().
						Dur("uptime", snap.Uptime()).
						Int("beats", snap.Counts.Beats).
						Int("starts", snap.Counts.Starts).
						Int("stops", snap.Counts.Stops).
						Msg("heartbeat")
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					logger.Warn().Err(err).Msg("heartbeat publish error")
				}
			}
		}
	}
}

// printDefaults writes the status document a freshly started daemon
// would serve, without touching any hardware.
func printDefaults(cfg *config.Config) {
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.PollMs,
		HeartbeatMs: cfg.HeartbeatMs,
		TickRate:    cfg.TickRate(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		TelemetryDB: telemetryPath(cfg),
	})
	fmt.Println(string(status.FormatJSON(tracker.Snapshot())))
}

func telemetryPath(cfg *config.Config) string {
	if !cfg.Telemetry {
		return ""
	}
	return cfg.TelemetryDB
}
