package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/client"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/server"
	"github.com/theirongolddev/payoff/internal/store"
)

type serverRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Cache     string    `json:"cache"`
}

var (
	flagServeAddr          string
	flagServeRedis         string
	flagServeDetach        bool
	flagServePIDFile       string
	flagServeLogFile       string
	flagServeMaxCandidates int
	flagServeChild         bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulators and split search over HTTP",
	Long: "Serve the simulators and split search as a JSON API:\n" +
		"  POST /v1/single, /v1/joint, /v1/split\n" +
		"  GET  /healthz, /v1/status, /metrics",
	RunE: runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(config.CacheDir(), "payoffd.pid")
	defaultLog := filepath.Join(config.CacheDir(), "payoffd.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")

	serveCmd.Flags().StringVar(&flagServeRedis, "redis", "", "Redis address for the shared result cache")
	serveCmd.Flags().IntVar(&flagServeMaxCandidates, "max-candidates", server.DefaultMaxCandidates, "Largest sweep one request may ask for")
	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func serveAddr() string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	return appCfg.Server.Addr
}

func runServe(cmd *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid server launch mode")
	}
	if flagServeDetach {
		return startServerDetached()
	}
	return runServerForeground(cmd.Context())
}

func startServerDetached() error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create server log directory: %w", err)
	}

	//nolint:gosec // server log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open server log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Stdin = nil
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagServePIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", serveAddr())
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

func runServerForeground(ctx context.Context) error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}

	pid := os.Getpid()
	if err := writePID(flagServePIDFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagServePIDFile) }()

	cfg := appCfg
	addr := serveAddr()

	srvCfg := server.Config{
		Addr:          addr,
		Workers:       cfg.General.Workers,
		MaxMonths:     cfg.General.MaxMonths,
		Top:           cfg.General.Top,
		MaxCandidates: flagServeMaxCandidates,
		CacheTTL:      time.Duration(cfg.Server.CacheTTLSec) * time.Second,
	}

	closeCache := openServerCache(ctx, cfg, &srvCfg)
	defer closeCache()

	state := serverRuntimeState{
		PID:       pid,
		Addr:      addr,
		StartedAt: time.Now(),
		Cache:     srvCfg.CacheBackend,
	}
	_ = writeState(statePath(flagServePIDFile), state)
	defer func() { _ = os.Remove(statePath(flagServePIDFile)) }()

	svc := server.New(srvCfg)

	fmt.Printf("  payoff server listening on http://%s\n", addr)
	fmt.Printf("  Result cache: %s\n", srvCfg.CacheBackend)
	fmt.Printf("  Stop with: payoff serve stop --pid-file %s\n", flagServePIDFile)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openServerCache picks the result cache: Redis when an address is
// configured and reachable, otherwise the sqlite history database, otherwise
// process memory. It also wires run recording. The returned func releases
// whatever was opened.
func openServerCache(ctx context.Context, cfg config.Config, srvCfg *server.Config) func() {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	h, err := store.Open(config.HistoryPath())
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		h = nil
	} else {
		closers = append(closers, func() { _ = h.Close() })
		if n, err := h.PruneCache(ctx); err != nil {
			slog.Warn("pruning result cache failed", "error", err)
		} else if n > 0 {
			slog.Debug("pruned expired cache entries", "count", n)
		}
		if !cfg.General.NoHistory {
			srvCfg.History = h
		}
	}

	redisAddr := flagServeRedis
	if redisAddr == "" {
		redisAddr = config.GetRedisAddr(cfg)
	}
	if redisAddr != "" {
		rc := store.NewRedisCache(redisAddr)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err == nil {
			closers = append(closers, func() { _ = rc.Close() })
			srvCfg.Cache = rc
			srvCfg.CacheBackend = "redis"
			return closeAll
		}
		_ = rc.Close()
		slog.Warn("redis unreachable, using local cache", "addr", redisAddr, "error", err)
	}

	if h != nil {
		srvCfg.Cache = h
		srvCfg.CacheBackend = "sqlite"
		return closeAll
	}
	srvCfg.Cache = store.NewMemoryCache()
	srvCfg.CacheBackend = "memory"
	return closeAll
}

func runServeStatus(cmd *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		fmt.Printf("  Server: not running (pid file not found)\n")
		return nil
	}

	if !processAlive(pid) {
		fmt.Printf("  Server: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := serveAddr()
	if st, err := readState(statePath(flagServePIDFile)); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Server PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	st, err := client.New(addr).Status(ctx)
	if err != nil {
		fmt.Println("  API status: " + cli.RenderBad(fmt.Sprintf("unreachable (%v)", err)))
		return nil
	}

	fmt.Printf("  Uptime: %s\n", (time.Duration(st.UptimeSec) * time.Second).String())
	fmt.Printf("  Requests: %d (searches %d)\n", st.Requests, st.Searches)
	if st.CacheBackend != "" {
		fmt.Printf("  Cache: %s (%d hits, %d misses)\n", st.CacheBackend, st.CacheHits, st.CacheMisses)
		if st.CacheEntries > 0 {
			fmt.Printf("  Cached answers: %d\n", st.CacheEntries)
		}
	}
	if st.LastError != "" {
		fmt.Println("  Last error: " + cli.RenderBad(st.LastError))
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		return errors.New("server is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(flagServePIDFile)
			_ = os.Remove(statePath(flagServePIDFile))
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureServerNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // server pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st serverRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (serverRuntimeState, error) {
	var st serverRuntimeState
	//nolint:gosec // server state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
