// ctmtool inspects connected-texture block assets and serves model selection.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/blockctm/internal/assets"
	"github.com/Faultbox/blockctm/internal/blockstate"
	"github.com/Faultbox/blockctm/internal/config"
	"github.com/Faultbox/blockctm/internal/engine/texture"
	"github.com/Faultbox/blockctm/internal/engine/variant"
	"github.com/Faultbox/blockctm/internal/logger"
	"github.com/Faultbox/blockctm/internal/registry"
	"github.com/Faultbox/blockctm/pkg/ctm"
	"github.com/Faultbox/blockctm/pkg/cube"
)

func main() {
	// Global flags come before the command
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "dirs":
		cmdDirs(args)
	case "inspect", "info":
		cmdInspect(args)
	case "select", "sel":
		cmdSelect(args)
	case "serve":
		cmdServe(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ctmtool - connected texture block utility

Usage:
  ctmtool [global options] <command> [options]

Global options:
  -config <file>        Config file
  -assets <roots>       Comma-separated asset dirs or zip packs, later override earlier
  -debug                Debug logging
  -metrics-addr <addr>  Listen address for serve
  -log-format <fmt>     Log format, console or json
  -log-file <file>      Also log to file

Settings can also come from BLOCKCTM_* environment variables, e.g.
BLOCKCTM_ASSETS or BLOCKCTM_LOG_LEVEL. Flags win over the environment,
which wins over the config file.

Commands:
  dirs [normal]                       Show how each direction resolves per face
  inspect <block>                     Show a block's variants, faces and layers
  select [-connect list] <state>      Pick the model and connections for a state
  serve                               Serve /metrics and /select, reload on SIGHUP
  config [output]                     Write the effective config

Examples:
  ctmtool dirs north
  ctmtool -assets base,pack inspect marble
  ctmtool select -connect up,east,up_east "marble[variation=pillar]"
  ctmtool -metrics-addr :9464 serve`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// setup loads the config and starts logging.
func setup() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg
}

func newManager(cfg *config.Config) (*assets.Manager, error) {
	m := assets.NewManager()
	for _, root := range cfg.Assets.Roots {
		if err := m.AddPath(root); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// openRegistry builds a registry over the configured roots and loads it.
// Blocks that fail to load are reported but do not stop the command.
func openRegistry(cfg *config.Config, blocks []string) (*registry.Registry, *assets.Manager, error) {
	m, err := newManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(blocks) == 0 {
		blocks = cfg.Assets.Blocks
	}
	reg := registry.New(registry.Options{Blocks: blocks, AtlasMaxSize: cfg.Render.AtlasMaxSize}, nil)
	if err := reg.Reload(context.Background(), m); err != nil {
		if reg.Generation() == 0 {
			m.Close()
			return nil, nil, err
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return reg, m, nil
}

func cmdDirs(args []string) {
	normals := cube.Facings[:]
	if len(args) > 0 {
		f, err := cube.ParseFacing(args[0])
		if err != nil {
			fail(err)
		}
		normals = []cube.Facing{f}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NORMAL\tDIR\tFACINGS\tINDEX\tOFFSET")
	for _, n := range normals {
		for _, d := range ctm.Dirs {
			idx := ctm.Index(d, n)
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\n", n, d, joinFacings(ctm.Normalize(d, n)), idx, idx.Offset())
		}
	}
	w.Flush()
}

func cmdInspect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ctmtool inspect <block>")
		os.Exit(1)
	}
	block := args[0]

	cfg := setup()
	defer logger.Sync()

	reg, m, err := openRegistry(cfg, []string{block})
	if err != nil {
		fail(err)
	}
	defer m.Close()
	c, ok := reg.Model(block)
	if !ok {
		fail(fmt.Errorf("block %s did not load", block))
	}
	def := c.Definition()

	fmt.Printf("Block:      %s\n", c.Name())
	fmt.Printf("Default:    %s %s\n", def.Default.Model, describeVariant(def.Default))
	fmt.Printf("AO:         %v\n", c.AmbientOcclusion())
	if def.IgnoreStates {
		fmt.Println("States:     ignored")
	}

	var layers []string
	for _, l := range texture.Layers {
		if c.CanRenderInLayer(l) {
			layers = append(layers, l.String())
		}
	}
	fmt.Printf("Layers:     %s\n", strings.Join(layers, ", "))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nKEY\tMODEL\tROTATION")
	for _, key := range def.VariantKeys() {
		v := def.Variants[key]
		fmt.Fprintf(w, "%s\t%s\t%s\n", key, v.Model, describeVariant(v))
	}
	fmt.Fprintln(w, "\nSIDE\tFACE")
	for _, f := range cube.Facings {
		fmt.Fprintf(w, "%s\t%s\n", f, c.Face(f).Location)
	}
	w.Flush()

	fmt.Println("\nTextures:")
	for _, name := range c.Textures() {
		s, _ := reg.Atlas().Sprite(name)
		fmt.Printf("  %-40s %dx%d\n", name, s.Width, s.Height)
	}
}

func describeVariant(v variant.Variant) string {
	s := fmt.Sprintf("x=%d y=%d", v.X, v.Y)
	if v.UVLock {
		s += " uvlock"
	}
	return s
}

// parseConnections turns "up,east,up_east" into a connectivity bitfield.
func parseConnections(list string) (ctm.Connections, error) {
	var c ctm.Connections
	if list == "" {
		return c, nil
	}
	for _, name := range strings.Split(list, ",") {
		i, err := ctm.ParseConnectionIndex(strings.TrimSpace(name))
		if err != nil {
			return 0, err
		}
		c = c.With(i, true)
	}
	return c, nil
}

// selection is what a state resolves to.
type selection struct {
	State       string              `json:"state"`
	Model       string              `json:"model"`
	Generation  uint64              `json:"generation"`
	Faces       map[string]string   `json:"faces"`
	Connections map[string][]string `json:"connections,omitempty"`
}

func selectState(snap *registry.Snapshot, text, connect string) (*selection, error) {
	state, err := blockstate.ParseState(text)
	if err != nil {
		return nil, err
	}
	c, ok := snap.Model(state.Block())
	if !ok {
		return nil, fmt.Errorf("unknown block %s", state.Block())
	}
	conns, err := parseConnections(connect)
	if err != nil {
		return nil, err
	}
	state = state.WithConnections(conns)

	sel := &selection{
		State:      state.String(),
		Model:      c.Model(state).Location(),
		Generation: snap.Generation(),
		Faces:      make(map[string]string, len(cube.Facings)),
	}
	for _, f := range cube.Facings {
		sel.Faces[f.String()] = c.Face(f).Location
		mask := ctm.ConnectedMask(state, f)
		if mask == 0 {
			continue
		}
		if sel.Connections == nil {
			sel.Connections = make(map[string][]string)
		}
		for _, d := range ctm.Dirs {
			if mask&(1<<d) != 0 {
				sel.Connections[f.String()] = append(sel.Connections[f.String()], d.String())
			}
		}
	}
	return sel, nil
}

func cmdSelect(args []string) {
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	connect := fs.String("connect", "", "Comma-separated connected neighbours, e.g. up,up_east")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ctmtool select [-connect list] <state>")
		os.Exit(1)
	}

	cfg := setup()
	defer logger.Sync()

	state, err := blockstate.ParseState(fs.Arg(0))
	if err != nil {
		fail(err)
	}
	reg, m, err := openRegistry(cfg, []string{state.Block()})
	if err != nil {
		fail(err)
	}
	defer m.Close()
	sel, err := selectState(reg.Snapshot(), fs.Arg(0), *connect)
	if err != nil {
		fail(err)
	}

	fmt.Printf("State: %s\n", sel.State)
	fmt.Printf("Model: %s\n", sel.Model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIDE\tFACE\tCONNECTED")
	for _, f := range cube.Facings {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f, sel.Faces[f.String()], strings.Join(sel.Connections[f.String()], " "))
	}
	w.Flush()
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.Parse(args)

	cfg := setup()
	defer logger.Sync()
	log := logger.Named("serve")

	for _, register := range []func(prometheus.Registerer) error{assets.RegisterMetrics, variant.RegisterMetrics, registry.RegisterMetrics} {
		if err := register(prometheus.DefaultRegisterer); err != nil {
			log.Error("failed to register metrics", zap.Error(err))
			os.Exit(1)
		}
	}

	m, err := newManager(cfg)
	if err != nil {
		log.Error("failed to open assets", zap.Error(err))
		os.Exit(1)
	}
	defer m.Close()
	reg := registry.New(registry.Options{Blocks: cfg.Assets.Blocks, AtlasMaxSize: cfg.Render.AtlasMaxSize}, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := reg.Reload(ctx, m); err != nil && reg.Generation() == 0 {
		log.Error("initial load failed", zap.Error(err))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok generation=%d blocks=%d\n", reg.Generation(), len(reg.Blocks()))
	})
	mux.HandleFunc("/select", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sel, err := selectState(reg.Snapshot(), q.Get("state"), q.Get("connect"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sel)
	})

	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("listening", zap.String("addr", cfg.Metrics.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-hup:
			m.Reset()
			if err := reg.Reload(ctx, m); err != nil {
				log.Warn("reload incomplete", zap.Error(err))
			}
		case <-ctx.Done():
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := srv.Shutdown(shutdown); err != nil {
				log.Warn("shutdown", zap.Error(err))
			}
			cancel()
			log.Info("stopped")
			return
		}
	}
}

func cmdConfig(args []string) {
	cfg := setup()
	defer logger.Sync()

	var err error
	if len(args) > 0 {
		err = cfg.SaveTo(args[0])
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fail(err)
	}
}

func joinFacings(fs []cube.Facing) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.String()
	}
	return strings.Join(names, "+")
}
