// Command dogfoodtimer tracks how long a food container lid has stayed
// closed, escalating LED/buzzer alerts and publishing state changes to MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erickhammersmark/dogfoodtimer/internal/config"
	"github.com/erickhammersmark/dogfoodtimer/internal/hw"
	"github.com/erickhammersmark/dogfoodtimer/internal/logging"
	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
	"github.com/erickhammersmark/dogfoodtimer/internal/mono"
	"github.com/erickhammersmark/dogfoodtimer/internal/mqtt"
	"github.com/erickhammersmark/dogfoodtimer/internal/status"
	"github.com/erickhammersmark/dogfoodtimer/internal/version"
	"github.com/erickhammersmark/dogfoodtimer/internal/web"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		configPath string
		broker     string
		wsBroker   string
		httpAddr   string
		poll       time.Duration
		heartbeat  time.Duration
		logLevel   string
		printState bool
		skipPOST   bool
	)

	root := &cobra.Command{
		Use:           "dogfoodtimer",
		Short:         "Lid-closed timer with escalating alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags override file values only when given explicitly
			flags := cmd.Flags()
			if flags.Changed("broker") {
				cfg.Broker = broker
			}
			if flags.Changed("ws-broker") {
				cfg.WSBroker = wsBroker
			}
			if flags.Changed("http") {
				cfg.HTTPAddr = httpAddr
			}
			if flags.Changed("poll") {
				cfg.Poll = poll
			}
			if flags.Changed("heartbeat") {
				cfg.Heartbeat = heartbeat
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level, ok := logging.ParseLevel(cfg.LogLevel)
			if !ok {
				return fmt.Errorf("unrecognized log level %q", cfg.LogLevel)
			}
			logger := logging.New(level)
			defer logger.Sync()

			return run(cfg, logger, printState, skipPOST)
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default "+config.DefaultConfigFilename+")")
	root.Flags().StringVar(&broker, "broker", "", `MQTT broker URL ("off" disables MQTT)`)
	root.Flags().StringVar(&wsBroker, "ws-broker", "", `MQTT websocket URL for the live status page ("=broker" derives from the broker URL)`)
	root.Flags().StringVar(&httpAddr, "http", "", "HTTP status address (empty disables)")
	root.Flags().DurationVar(&poll, "poll", 0, "control loop period")
	root.Flags().DurationVar(&heartbeat, "heartbeat", 0, "MQTT heartbeat period (0 disables)")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&printState, "print-state", false, "read one orientation sample, print it, and exit")
	root.Flags().BoolVar(&skipPOST, "skip-post", false, "skip the power-on light show")

	root.AddCommand(initConfigCommand())
	version.AttachCommand(root)

	return root
}

func initConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger, printState, skipPOST bool) error {
	accel, err := hw.NewAccel(cfg.I2CBus, cfg.AccelAddr)
	if err != nil {
		return fmt.Errorf("init accelerometer: %w", err)
	}
	defer accel.Close()

	// Print state mode
	if printState {
		x, y, z, err := accel.Read()
		if err != nil {
			return fmt.Errorf("read accelerometer: %w", err)
		}
		fmt.Printf("x=%+.2f y=%+.2f z=%+.2f -> %s\n", x, y, z, logic.Classify(x, y, z))
		return nil
	}

	panel, err := hw.NewPanel(cfg.GPIOChip, hw.Pins{
		LEDRed:   cfg.PinLEDRed,
		LEDGreen: cfg.PinLEDGreen,
		Buzzer:   cfg.PinBuzzer,
		ButtonA:  cfg.PinButtonA,
		ButtonB:  cfg.PinButtonB,
		Mute:     cfg.PinMute,
	})
	if err != nil {
		return fmt.Errorf("init panel: %w", err)
	}
	defer panel.Close()

	if !skipPOST {
		post(panel, time.Sleep)
	}

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Broker == "off" || cfg.Broker == "" {
		logger.Info("mqtt disabled")
		publisher = nopPublisher{}
		mqttStatus = nopPublisher{}
	} else {
		real := mqtt.NewRealPublisher(cfg.Broker)
		publisher = real
		mqttStatus = real
	}
	defer publisher.Close()

	wsBroker := resolveWSBroker(cfg.WSBroker, cfg.Broker, logger)

	// Status tracker before STARTUP so the snapshot is available
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		WSBroker:    wsBroker,
		WarnMs:      int64(logic.WarnAfterMS),
		CriticalMs:  int64(logic.CriticalAfterMS),
		AlarmMs:     int64(logic.AlarmAfterMS),
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warnw("startup event publish failed", "error", err)
	} else {
		logger.Info("published startup event")
	}

	// HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorw("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Infow("http status server listening", "addr", cfg.HTTPAddr)
	}

	timer := logic.NewTimer(mono.NewSystemClock(), logic.Hardware{
		Accel:     accel,
		Indicator: panel,
		Tone:      panel,
		Buttons:   panel,
		Mute:      panel,
	})

	logger.Infow("started",
		"poll", cfg.Poll,
		"broker", cfg.Broker,
		"heartbeat", cfg.Heartbeat,
		"warn", time.Duration(logic.WarnAfterMS)*time.Millisecond,
		"critical", time.Duration(logic.CriticalAfterMS)*time.Millisecond,
		"alarm", time.Duration(logic.AlarmAfterMS)*time.Millisecond,
	)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(timer, publisher, mqttStatus, tracker, logger, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

// nopPublisher satisfies the publishing interfaces when MQTT is disabled.
type nopPublisher struct{}

func (nopPublisher) PublishEvent(mqtt.Event) error        { return nil }
func (nopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (nopPublisher) Close() error                         { return nil }
func (nopPublisher) IsConnected() bool                    { return false }

// post runs the power-on light show: each severity color in turn, then
// dark. It doubles as a quick visual check that all LED channels work.
func post(indicator logic.Indicator, sleep func(time.Duration)) {
	const dwell = 500 * time.Millisecond
	for _, c := range []logic.Color{logic.ColorOK, logic.ColorWarn, logic.ColorCritical} {
		indicator.SetColor(c)
		sleep(dwell)
	}
	indicator.Off()
}

// resolveWSBroker converts the ws_broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty
// disables the live view.
func resolveWSBroker(ws, broker string, logger *zap.SugaredLogger) string {
	if ws != "=broker" {
		return ws
	}
	if broker == "" || broker == "off" {
		return ""
	}
	u, err := url.Parse(broker)
	if err != nil {
		logger.Warnw("cannot derive websocket broker", "broker", broker, "error", err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
