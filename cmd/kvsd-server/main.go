// Command kvsd-server starts the key-value store's TCP front-end.
//
//	kvsd-server [--addr IP:PORT] [--engine kvs|sled] [-V]
//
// --addr binds the listener; default 127.0.0.1:4000. --engine selects the
// storage backend; on first run (empty data directory) the default is
// "kvs", otherwise the default is whichever engine's on-disk state already
// exists. Selecting an engine that disagrees with existing on-disk state is
// an error. -V prints the version and exits.
package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/jassi-singh/kvsd/internal/config"
	"github.com/jassi-singh/kvsd/internal/engine"
	"github.com/jassi-singh/kvsd/internal/engine/boltengine"
	"github.com/jassi-singh/kvsd/internal/kverrors"
	"github.com/jassi-singh/kvsd/internal/pool"
	"github.com/jassi-singh/kvsd/internal/server"
)

// version is the server's reported version for -V.
const version = "0.1.0"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.LoadConfig("kvsd.yml")
	if err != nil {
		slog.Error("kvsd-server: failed to load configuration", "error", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.Addr, "bind address, IP:PORT")
	engineName := flag.String("engine", "", "storage engine: kvs or sled")
	printVersion := flag.BoolP("version", "V", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println("kvsd-server", version)
		os.Exit(0)
	}

	if _, _, err := net.SplitHostPort(*addr); err != nil {
		slog.Error("kvsd-server: invalid --addr", "addr", *addr, "error", err)
		os.Exit(1)
	}

	eng, selected, err := openEngine(cfg.DataDir, *engineName)
	if err != nil {
		slog.Error("kvsd-server: failed to open engine", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	slog.Info("kvsd-server: engine opened", "engine", selected, "data_dir", cfg.DataDir)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		slog.Error("kvsd-server: failed to bind", "addr", *addr, "error", err)
		os.Exit(1)
	}
	defer ln.Close()

	slog.Info("kvsd-server: listening", "addr", ln.Addr())

	workerPool := pool.NewFixedPool(cfg.PoolSize)
	srv := server.New(ln, eng, workerPool)
	if err := srv.Serve(); err != nil {
		slog.Error("kvsd-server: serve error", "error", err)
		os.Exit(1)
	}
}

// openEngine resolves which engine to open, following the engine-detection
// rule: the presence of kvs.log indicates the primary engine is already in
// use, the presence of a db subdirectory indicates the alternate engine is.
// requested overrides the on-disk default unless it conflicts with it.
func openEngine(dataDir, requested string) (e engine.Engine, selected string, err error) {
	kvsPresent := fileExists(filepath.Join(dataDir, engine.LogFileName))
	sledPresent := dirExists(filepath.Join(dataDir, boltengine.DirName))

	selected = requested
	if selected == "" {
		switch {
		case sledPresent:
			selected = config.EngineSled
		default:
			selected = config.EngineKVS
		}
	}

	switch selected {
	case config.EngineKVS:
		if sledPresent {
			return nil, "", fmt.Errorf("kvsd-server: requested engine %q but %s/%s holds sled state: %w",
				selected, dataDir, boltengine.DirName, kverrors.ErrEngineMismatch)
		}
		e, err = engine.Open(dataDir)
	case config.EngineSled:
		if kvsPresent {
			return nil, "", fmt.Errorf("kvsd-server: requested engine %q but %s/%s holds kvs state: %w",
				selected, dataDir, engine.LogFileName, kverrors.ErrEngineMismatch)
		}
		e, err = boltengine.Open(dataDir)
	default:
		return nil, "", fmt.Errorf("kvsd-server: unknown engine %q, want %q or %q", selected, config.EngineKVS, config.EngineSled)
	}
	if err != nil {
		return nil, "", err
	}
	return e, selected, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
