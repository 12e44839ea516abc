package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aivox/dialoguecore/pkg/config"
	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/metrics"
	"github.com/aivox/dialoguecore/pkg/session"
	"github.com/aivox/dialoguecore/pkg/store"
	"github.com/aivox/dialoguecore/pkg/stt"
	"github.com/aivox/dialoguecore/pkg/transportws"
	"github.com/aivox/dialoguecore/pkg/tts"
)

var (
	flagDataDir    string
	flagInMemoryKV bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the websocket daemon",
	Long: `serve loads the daemon's YAML configuration, wires every adapter
(storage, speech providers, model generators) it describes, and accepts
device/app websocket connections on websocket_path until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagDataDir, "data-dir", "./data/kv", "directory for the BadgerDB-backed device/role/message store")
	serveCmd.Flags().BoolVar(&flagInMemoryKV, "in-memory", false, "run the key-value store in memory only, for local smoke testing")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if IsVerbose() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	log := logging.Default("dialoguecored")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.InfoPrintf("serve: shutting down")
		cancel()
	}()

	kvStore, closeKV, err := openKV()
	if err != nil {
		return fmt.Errorf("open kv store: %w", err)
	}
	defer closeKV()

	_, shutdownMetrics, err := metrics.InitProvider()
	if err != nil {
		return fmt.Errorf("init metrics provider: %w", err)
	}
	defer shutdownMetrics(context.Background())

	gens, asrMux, ttsMux, err := buildMux(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wire providers: %w", err)
	}
	if err := tts.RegisterSilentDefault(ttsMux, 0); err != nil {
		return fmt.Errorf("register default tts fallback: %w", err)
	}

	configs := store.NewStaticConfigStore(cfg)
	devices := store.NewKVDeviceStore(kvStore)
	messages := store.NewKVMessageStore(kvStore)

	sttFactory := stt.NewFactory(asrMux, log)
	ttsFactory := tts.NewFactory(ttsMux, cfg.AudioPath, log)

	rt := session.NewRouter(ctx, cfg, configs, devices, messages, kvStore, gens, sttFactory, ttsFactory, log)
	defer rt.Close()

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.WebsocketPath, wsHandler(rt, log))
	mux.Handle("/metrics", metrics.Handler())

	addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	serveErrCh := make(chan error, 1)
	go func() {
		log.InfoPrintf("serve: listening on %s%s", addr, cfg.WebsocketPath)
		serveErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WarnPrintf("serve: shutdown: %v", err)
		}
	}
	log.InfoPrintf("serve: stopped")
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func openKV() (kv.Store, func(), error) {
	if flagInMemoryKV {
		mem := kv.NewMemory(nil)
		return mem, func() { mem.Close() }, nil
	}
	db, err := kv.NewBadger(kv.BadgerOptions{Dir: flagDataDir})
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

// wsHandler upgrades one HTTP request to a websocket connection and hands
// it to the router, resolving the device ID from the same header/query
// fallback chain original_source/backend/app/main.py's _handle_ws reads at
// accept time rather than from inside the "hello" frame.
func wsHandler(rt *session.Router, log logging.Logger) http.HandlerFunc {
	up := transportws.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := deviceIDFromRequest(r)
		conn, err := up.Upgrade(w, r)
		if err != nil {
			log.WarnPrintf("serve: upgrade: %v", err)
			return
		}
		rt.HandleConnection(r.Context(), deviceID, conn)
	}
}

func deviceIDFromRequest(r *http.Request) string {
	if id := r.Header.Get("Device-Id"); id != "" {
		return id
	}
	if id := r.Header.Get("device-id"); id != "" {
		return id
	}
	q := r.URL.Query()
	for _, key := range []string{"device-id", "mac_address", "uuid"} {
		if id := q.Get(key); id != "" {
			return id
		}
	}
	return ""
}
