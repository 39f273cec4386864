package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"memoreal/internal/api"
	"memoreal/internal/config"
)

const (
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
	serverPingTimeout = 500 * time.Millisecond
)

// withClient runs fn against the configured server, starting a local one
// for the duration of the call when nothing answers.
func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	cleanup, err := ensureServer(cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	return fn(api.NewClient(cfg.APIURL))
}

func ensureServer(cfg *config.Config) (func(), error) {
	client := api.NewClient(cfg.APIURL)
	ctx, cancel := context.WithTimeout(context.Background(), serverPingTimeout)
	defer cancel()

	if err := client.Ping(ctx); err == nil {
		return nil, nil
	}

	cmd, err := startServerProcess(cfg)
	if err != nil {
		return nil, err
	}
	stop := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	if _, err := waitForServer(client, cfg, serverStartTimeout); err != nil {
		stop()
		return nil, err
	}
	return stop, nil
}

// serverEnv is the environment of a spawned capsule server: the caller's
// environment with this CLI's effective settings layered on top.
func serverEnv(cfg *config.Config, base []string) []string {
	env := append([]string(nil), base...)
	env = append(env, cfg.Env()...)
	if level := strings.TrimSpace(cfg.LogLevel); level != "" && os.Getenv(logLevelEnvKey) == "" {
		env = append(env, logLevelEnvKey+"="+level)
	}
	if format := strings.TrimSpace(cfg.LogFormat); format != "" && os.Getenv(logFormatEnvKey) == "" {
		env = append(env, logFormatEnvKey+"="+format)
	}
	return env
}

func startServerProcess(cfg *config.Config) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, "srv")
	cmd.Env = serverEnv(cfg, os.Environ())
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// waitForServer polls until a capsule server answers, then checks that it
// runs the location policy and ledger this CLI was configured with.
func waitForServer(client *api.Client, cfg *config.Config, timeout time.Duration) (api.InfoResponse, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		info, err := client.GetInfo(ctx)
		cancel()
		if err == nil {
			return info, checkServerInfo(info, cfg)
		}
		if !isConnRefused(err) {
			// Something else owns the port.
			return api.InfoResponse{}, err
		}
		time.Sleep(serverPollInterval)
	}
	return api.InfoResponse{}, errors.New("server did not start in time")
}

func checkServerInfo(info api.InfoResponse, cfg *config.Config) error {
	if want := strings.TrimSpace(cfg.Capsules.LocationPolicy); want != "" && !strings.EqualFold(info.LocationPolicy, want) {
		return fmt.Errorf("server at %s enforces location policy %q, expected %q", cfg.APIURL, info.LocationPolicy, want)
	}
	if want := strings.TrimSpace(cfg.Ledger.Mode); want != "" && !strings.EqualFold(info.LedgerMode, want) {
		return fmt.Errorf("server at %s uses the %q ledger, expected %q", cfg.APIURL, info.LedgerMode, want)
	}
	return nil
}

func isConnRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
