// Package mpv implements player.Player by driving an mpv process over its JSON IPC.
package mpv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/diniamo/gopv"

	"github.com/justchokingaround/cicidraci/internal/config"
	"github.com/justchokingaround/cicidraci/internal/player"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	pollInterval     = 250 * time.Millisecond
	quitTimeout      = 500 * time.Millisecond
)

// Options configures the mpv player
type Options struct {
	LoadUserConfig bool
	Fullscreen     bool
	ExtraArgs      []string
	Debug          bool
	Logger         *slog.Logger
}

// Player runs one mpv process per loaded URL
type Player struct {
	platform   Platform
	executable string
	opts       Options
	logger     *slog.Logger
	events     chan player.Event

	mu     sync.Mutex
	cmd    *exec.Cmd
	client *gopv.Client
	ipc    *IPCConfig
	cancel context.CancelFunc
	// session identifies the current playback; events of older ones are dropped
	session uint64
}

// New creates a Player after checking that mpv is installed
func New(opts Options) (*Player, error) {
	platform := DetectPlatform()
	path, err := FindExecutable(platform)
	if err != nil {
		return nil, fmt.Errorf("mpv not found: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Player{
		platform:   platform,
		executable: path,
		opts:       opts,
		logger:     opts.Logger.With("component", "mpv"),
		events:     make(chan player.Event, 16),
	}, nil
}

// NewFromConfig creates a Player from the player section of the configuration
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Player, error) {
	return New(Options{
		LoadUserConfig: cfg.Player.LoadUserConfig,
		Fullscreen:     cfg.Player.Fullscreen,
		ExtraArgs:      cfg.Player.MPVArgs,
		Debug:          cfg.Advanced.Debug,
		Logger:         logger,
	})
}

// Events implements player.Player
func (p *Player) Events() <-chan player.Event {
	return p.events
}

// Load implements player.Player
func (p *Player) Load(ctx context.Context, url string, options player.PlayOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	ipc, err := NewIPCConfig(p.platform)
	if err != nil {
		return err
	}

	cmd := exec.Command(p.executable, buildArgs(ipc, url, options, p.opts)...)
	// mpv must not touch the terminal the TUI runs in
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		removeSocket(ipc)
		return fmt.Errorf("failed to start mpv: %w", err)
	}

	p.session++
	session := p.session
	p.cmd = cmd
	p.ipc = ipc

	watchCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.logger.Debug("mpv started", "pid", cmd.Process.Pid, "ipc", ipc.Address, "title", options.Title)
	p.emitLocked(session, player.Event{Kind: player.EventLoading})

	go p.watch(watchCtx, session, cmd, ipc)
	return nil
}

// Stop implements player.Player
func (p *Player) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	p.session++

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	// gopv closes the client itself once the process is gone
	if p.client != nil {
		client := p.client
		p.client = nil
		go func() {
			done := make(chan struct{})
			go func() {
				_, _ = client.Request("quit")
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(quitTimeout):
			}
		}()
	}

	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	p.cmd = nil

	removeSocket(p.ipc)
	p.ipc = nil
}

// watch connects to mpv and turns its state into events until the process exits
func (p *Player) watch(ctx context.Context, session uint64, cmd *exec.Cmd, ipc *IPCConfig) {
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	if err := waitForIPC(ctx, ipc, exited); err != nil {
		if ctx.Err() == nil {
			p.fail(session, fmt.Errorf("mpv IPC at %s: %w", ipc.Address, err))
		}
		return
	}

	client, err := gopv.Connect(ipc.Address, func(err error) {
		p.logger.Debug("mpv IPC error", "error", err)
	})
	if err != nil {
		p.fail(session, fmt.Errorf("failed to connect to mpv IPC at %s: %w", ipc.Address, err))
		return
	}

	p.mu.Lock()
	if session != p.session {
		p.mu.Unlock()
		_, _ = client.Request("quit")
		return
	}
	p.client = client
	p.mu.Unlock()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	ready := false
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-exited:
			p.exited(session, ready, err)
			return
		case <-ticker.C:
			if !ready {
				if _, err := client.Request("get_property", "time-pos"); err == nil {
					ready = true
					p.emit(session, player.Event{Kind: player.EventReady})
				}
				continue
			}
			// --idle keeps mpv alive after the file ends
			if idle, err := client.Request("get_property", "idle-active"); err == nil {
				if b, ok := idle.(bool); ok && b {
					p.emit(session, player.Event{Kind: player.EventEnded})
					_ = p.stopSession(session)
					return
				}
			}
		}
	}
}

func (p *Player) exited(session uint64, ready bool, err error) {
	switch {
	case !ready && err != nil:
		p.fail(session, fmt.Errorf("mpv exited before playback started: %w", err))
	case !ready:
		p.fail(session, errors.New("mpv exited before playback started"))
	case err != nil:
		p.fail(session, fmt.Errorf("mpv exited unexpectedly: %w", err))
	default:
		p.emit(session, player.Event{Kind: player.EventEnded})
	}
	_ = p.stopSession(session)
}

func (p *Player) fail(session uint64, err error) {
	p.logger.Warn("playback failed", "error", err)
	p.emit(session, player.Event{Kind: player.EventError, Err: err})
	_ = p.stopSession(session)
}

// stopSession stops playback only if session is still the current one
func (p *Player) stopSession(session uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if session == p.session {
		p.stopLocked()
	}
	return nil
}

func (p *Player) emit(session uint64, ev player.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emitLocked(session, ev)
}

func (p *Player) emitLocked(session uint64, ev player.Event) {
	if session != p.session {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.logger.Warn("dropping player event, no reader", "kind", ev.Kind)
	}
}

// waitForIPC polls until mpv created its IPC endpoint
func waitForIPC(ctx context.Context, ipc *IPCConfig, exited <-chan error) error {
	timeout := 5 * time.Second
	if ipc.Type == IPCNamedPipe {
		timeout = 10 * time.Second
	}
	deadline := time.After(timeout)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("timeout after %v", timeout)
		case err := <-exited:
			if err == nil {
				err = errors.New("process exited")
			}
			return err
		case <-ticker.C:
			if ipcReady(ipc) {
				return nil
			}
		}
	}
}

func removeSocket(ipc *IPCConfig) {
	if ipc != nil && ipc.IsSocket() {
		_ = os.Remove(ipc.Address)
	}
}

// buildArgs builds the mpv command line. The URL is always last.
func buildArgs(ipc *IPCConfig, url string, opts player.PlayOptions, p Options) []string {
	args := []string{
		ipcArgument(ipc),
		"--idle=yes",
		"--no-ytdl", // direct CDN streams
	}

	if !p.LoadUserConfig {
		args = append(args, "--no-config")
	}
	if !p.Debug {
		args = append(args, "--msg-level=all=warn")
	}

	if opts.StartTime > 0 {
		args = append(args, fmt.Sprintf("--start=%f", opts.StartTime.Seconds()))
	}
	if opts.Fullscreen || p.Fullscreen {
		args = append(args, "--fullscreen")
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	args = append(args, "--user-agent="+userAgent)

	if opts.Referer != "" {
		args = append(args, "--referrer="+opts.Referer)
	}
	if opts.Title != "" {
		args = append(args, "--force-media-title="+opts.Title)
	}

	args = append(args, p.ExtraArgs...)
	args = append(args, opts.MPVArgs...)

	return append(args, url)
}
