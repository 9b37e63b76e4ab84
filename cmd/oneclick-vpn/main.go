// OneClick VPN - tray app, headless service and control CLI
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/user/oneclick-vpn/internal/api"
	"github.com/user/oneclick-vpn/internal/config"
	"github.com/user/oneclick-vpn/internal/core"
	"github.com/user/oneclick-vpn/internal/elevate"
	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/profiles"
	"github.com/user/oneclick-vpn/internal/ui"
	"github.com/user/oneclick-vpn/resources"
)

const usage = `Usage: oneclick-vpn [flags] [command]

Without a command the tray app starts (or the headless service with -headless).

Commands:
  status              show the tunnel state of the running instance
  connect [profile]   connect (default: selected profile)
  disconnect          disconnect
  toggle [profile]    disconnect when active, connect otherwise
  select <profile>    select a profile, e.g. client07
  profiles            list the bundled profiles
  verify [dir]        check profiles and network security config (default: bundled)
  gen-profiles <dir>  write placeholder profiles to dir/wg

Flags:
`

type options struct {
	configPath string
	demo       bool
	apiAddr    string
	headless   bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	fsFlags := flag.NewFlagSet("oneclick-vpn", flag.ContinueOnError)
	fsFlags.StringVar(&opts.configPath, "config", config.GetConfigPath(), "path to config.yaml")
	fsFlags.BoolVar(&opts.demo, "demo", false, "simulate the tunnel (no network changes)")
	fsFlags.StringVar(&opts.apiAddr, "api", "", "control API address (default from config)")
	fsFlags.BoolVar(&opts.headless, "headless", false, "run the service without the tray")
	fsFlags.Usage = func() {
		fmt.Fprint(fsFlags.Output(), usage)
		fsFlags.PrintDefaults()
	}
	if err := fsFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fsFlags.Args()
	if len(rest) == 0 {
		return serve(opts, args)
	}

	var err error
	switch cmd, params := rest[0], rest[1:]; cmd {
	case "verify":
		err = verify(params)
	case "gen-profiles":
		err = genProfiles(params)
	case "status", "connect", "disconnect", "toggle", "select", "profiles":
		err = control(opts, cmd, params)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		fsFlags.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts options) (*config.Manager, *config.Config, error) {
	manager := config.NewManager(opts.configPath)
	loaded, err := manager.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg := *loaded
	if opts.demo {
		cfg.Mode = config.ModeDemo
	}
	if opts.apiAddr != "" {
		cfg.API.Enabled = true
		cfg.API.Listen = opts.apiAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return manager, &cfg, nil
}

func serve(opts options, args []string) int {
	fmt.Println("OneClick VPN starting...")

	manager, cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		return 1
	}

	// The kernel engine needs admin/root for the TUN interface.
	needAdmin := cfg.Mode == config.ModeWireGuard && cfg.Engine == config.EngineKernel
	relaunched, err := elevate.Ensure(needAdmin, elevatedArgs(args, manager.Path()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to elevate privileges: %v\nPlease run as administrator or use -demo.\n", err)
		return 1
	}
	if relaunched {
		return 0
	}

	if err := logger.Init(cfg.DataDir); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to open log:", err)
	}
	defer logger.Close()
	if !opts.headless {
		logger.CaptureStderr()
	}
	logger.Info("OneClick VPN starting (config %s)", manager.Path())

	svc, err := core.NewFromConfig(cfg, resources.FS)
	if err != nil {
		logger.Error("Failed to create VPN service: %v", err)
		fmt.Fprintln(os.Stderr, "Failed to create VPN service:", err)
		return 1
	}

	var srv *api.Server
	if cfg.API.Enabled {
		srv = api.NewServer(svc, api.ServerOptions{Addr: cfg.API.Listen})
		if err := srv.Start(); err != nil {
			logger.Error("Control API disabled: %v", err)
			srv = nil
		}
	}
	stopAPI := func() {
		if srv == nil {
			return
		}
		if err := srv.Stop(context.Background()); err != nil {
			logger.Warning("api: graceful shutdown error: %v", err)
		}
	}

	if !opts.headless {
		ui.Run(svc, ui.Options{ConfigPath: manager.Path(), OnExit: stopAPI})
		return 0
	}

	if err := svc.Start(); err != nil {
		logger.Error("Failed to start VPN service: %v", err)
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	logger.Info("Received signal %v, shutting down", sig)

	stopAPI()
	if err := svc.Stop(); err != nil {
		logger.Warning("Service stop: %v", err)
	}
	return 0
}

// elevatedArgs pins the config path so the privileged copy reads the same file.
func elevatedArgs(args []string, configPath string) []string {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return args
	}
	return append([]string{"-config", abs}, args...)
}

func control(opts options, cmd string, params []string) error {
	_, cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	client := api.NewClient(cfg.API.Listen)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile := ""
	if len(params) > 0 {
		profile = params[0]
	}

	switch cmd {
	case "status":
		st, err := client.Status(ctx)
		if err != nil {
			return notRunning(err)
		}
		printStatus(st)
		return nil
	case "connect":
		return notRunning(client.Connect(ctx, profile))
	case "disconnect":
		return notRunning(client.Disconnect(ctx))
	case "toggle":
		return notRunning(client.Toggle(ctx, profile))
	case "select":
		if profile == "" {
			return errors.New("select needs a profile, e.g. client07")
		}
		id, err := client.Select(ctx, profile)
		var se *api.StatusError
		if errors.As(err, &se) {
			return err
		}
		if err != nil {
			// No running instance: write the selection directly.
			repo, rerr := core.OpenRepository(cfg, resources.FS)
			if rerr != nil {
				return rerr
			}
			if rerr := repo.SetSelectedProfile(profile); rerr != nil {
				return rerr
			}
			id = repo.SelectedProfile()
		}
		fmt.Printf("Selected %s (%s)\n", profiles.Label(id), id)
		return nil
	case "profiles":
		selected := ""
		if list, err := client.Profiles(ctx); err == nil {
			selected = list.Selected
		} else if repo, rerr := core.OpenRepository(cfg, resources.FS); rerr == nil {
			selected = repo.SelectedProfile()
		}
		for _, id := range profiles.Names() {
			mark := " "
			if id == selected {
				mark = "*"
			}
			fmt.Printf("%s %s  %s\n", mark, profiles.Label(id), id)
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func notRunning(err error) error {
	var se *api.StatusError
	if err == nil || errors.As(err, &se) {
		return err
	}
	return fmt.Errorf("OneClick VPN does not seem to be running: %w", err)
}

func printStatus(st *api.StatusResponse) {
	fmt.Printf("State:   %s\n", st.State)
	fmt.Printf("Profile: %s (%s)\n", st.Label, st.Profile)
	if st.Endpoint != "" {
		fmt.Printf("Server:  %s\n", st.Endpoint)
	}
	if st.Traffic != "" {
		fmt.Printf("Traffic: %s\n", st.Traffic)
	}
	if st.Error != "" {
		fmt.Printf("Error:   %s\n", st.Error)
	}
}

func verify(params []string) error {
	var fsys fs.FS = resources.FS
	source := "bundled resources"
	if len(params) > 0 {
		fsys = os.DirFS(params[0])
		source = params[0]
	}
	if err := profiles.VerifyRelease(fsys); err != nil {
		return fmt.Errorf("verification of %s failed:\n%w", source, err)
	}
	fmt.Printf("%s: %d profiles and network security config OK\n", source, profiles.Count)
	return nil
}

func genProfiles(params []string) error {
	if len(params) != 1 {
		return errors.New("gen-profiles needs a target directory")
	}
	if err := profiles.GenerateStubs(params[0]); err != nil {
		return err
	}
	// verify expects the security config next to wg/.
	target := filepath.Join(params[0], profiles.SecurityConfig)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		data, err := fs.ReadFile(resources.FS, profiles.SecurityConfig)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
	}
	fmt.Printf("Wrote %d profiles to %s\n", profiles.Count, filepath.Join(params[0], profiles.Dir))
	return nil
}
