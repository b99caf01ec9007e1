package mpv

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the operating system platform
type Platform int

const (
	PlatformLinux Platform = iota
	PlatformWindows
	PlatformWSL
	PlatformMac
)

// IPCType represents the IPC connection type
type IPCType int

const (
	IPCUnixSocket IPCType = iota
	IPCNamedPipe
)

// IPCConfig holds IPC connection configuration
type IPCConfig struct {
	Type    IPCType
	Address string
}

// IsSocket reports whether Address is a socket file that must be removed after use
func (c *IPCConfig) IsSocket() bool {
	return c.Type == IPCUnixSocket
}

// DetectPlatform detects the current platform
func DetectPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMac
	default:
		if isWSL() {
			return PlatformWSL
		}
		return PlatformLinux
	}
}

func isWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// Executable returns the mpv executable name for the platform.
// WSL uses the Linux mpv since gopv cannot reach Windows named pipes from WSL.
func Executable(platform Platform) string {
	if platform == PlatformWindows {
		return "mpv.exe"
	}
	return "mpv"
}

// FindExecutable returns the full path of mpv for the platform
func FindExecutable(platform Platform) (string, error) {
	name := Executable(platform)
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH, please install mpv: %w", name, err)
	}
	return path, nil
}

// NewIPCConfig generates a unique IPC endpoint for the platform
func NewIPCConfig(platform Platform) (*IPCConfig, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return nil, fmt.Errorf("failed to generate IPC name: %w", err)
	}

	if platform == PlatformWindows {
		return &IPCConfig{
			Type:    IPCNamedPipe,
			Address: fmt.Sprintf(`\\.\pipe\cicidraci-mpv-%s`, suffix),
		}, nil
	}

	return &IPCConfig{
		Type:    IPCUnixSocket,
		Address: filepath.Join(os.TempDir(), fmt.Sprintf("cicidraci-mpv-%s.sock", suffix)),
	}, nil
}

func randomSuffix() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ipcArgument returns the mpv command-line argument for IPC
func ipcArgument(c *IPCConfig) string {
	return "--input-ipc-server=" + c.Address
}

// ipcReady reports whether mpv created its IPC endpoint
func ipcReady(c *IPCConfig) bool {
	if c.IsSocket() {
		_, err := os.Stat(c.Address)
		return err == nil
	}
	return isPipeReady(c.Address)
}
