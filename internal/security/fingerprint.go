package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// SignalSource provides one best-effort hardware identification signal.
// Implementations must be cheap to call and must return an error rather
// than blocking or guessing when the signal is unavailable on the
// current platform.
type SignalSource interface {
	// Name identifies the signal for logging and diagnostics.
	Name() string
	// Read returns the signal value. An error means the signal is
	// unavailable; callers skip it.
	Read() (string, error)
}

// Fingerprinter derives a stable machine identifier from a set of
// hardware signals. The identifier is the SHA-256 hex digest of all
// available signal values joined with "|". Username and hostname are
// always included, so derivation never fails outright.
type Fingerprinter struct {
	sources       []SignalSource
	cacheMutex    sync.RWMutex
	cached        string
	cacheExpiry   time.Time
	cacheDuration time.Duration
}

// NewFingerprinter creates a fingerprinter with the default signal
// sources for the current platform.
func NewFingerprinter() *Fingerprinter {
	return NewFingerprinterWithSources(DefaultSignalSources())
}

// NewFingerprinterWithSources creates a fingerprinter over an explicit
// set of signal sources. Used by tests and by hosts with their own
// identity signals.
func NewFingerprinterWithSources(sources []SignalSource) *Fingerprinter {
	return &Fingerprinter{
		sources:       sources,
		cacheDuration: 1 * time.Hour,
	}
}

// DefaultSignalSources returns the standard signal set: CPU identifier,
// disk serial, MAC address, system UUID and board serial (all
// best-effort), plus username and hostname as guaranteed fallbacks.
func DefaultSignalSources() []SignalSource {
	return []SignalSource{
		cpuSignal{},
		diskSignal{},
		macSignal{},
		systemUUIDSignal{},
		boardSerialSignal{},
		userSignal{},
		hostSignal{},
	}
}

// MachineID returns the machine identifier, generating and caching it
// on first use. It never fails: sources that error are skipped.
func (f *Fingerprinter) MachineID() string {
	f.cacheMutex.RLock()
	if f.cached != "" && time.Now().Before(f.cacheExpiry) {
		id := f.cached
		f.cacheMutex.RUnlock()
		return id
	}
	f.cacheMutex.RUnlock()

	start := time.Now()
	var components []string
	for _, source := range f.sources {
		value, err := source.Read()
		if err != nil {
			slog.Debug("hardware signal unavailable",
				slog.String("signal", source.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		components = append(components, value)
	}

	combined := strings.Join(components, "|")
	hash := sha256.Sum256([]byte(combined))
	id := hex.EncodeToString(hash[:])

	f.cacheMutex.Lock()
	f.cached = id
	f.cacheExpiry = time.Now().Add(f.cacheDuration)
	f.cacheMutex.Unlock()

	slog.Debug("machine identifier generated",
		slog.Int("signal_count", len(components)),
		slog.String("machine_id_prefix", id[:16]),
		slog.Duration("generation_time", time.Since(start)),
	)

	return id
}

// VerifyMachineID reports whether the current machine matches a stored
// identifier.
func (f *Fingerprinter) VerifyMachineID(storedID string) bool {
	return f.MachineID() == storedID
}

// Components returns the raw signal values keyed by signal name, for
// diagnostics. Unavailable signals are reported as empty strings.
func (f *Fingerprinter) Components() map[string]string {
	components := make(map[string]string, len(f.sources))
	for _, source := range f.sources {
		value, err := source.Read()
		if err != nil {
			value = ""
		}
		components[source.Name()] = strings.TrimSpace(value)
	}
	return components
}

// ClearCache discards the cached identifier so the next MachineID call
// regenerates it.
func (f *Fingerprinter) ClearCache() {
	f.cacheMutex.Lock()
	defer f.cacheMutex.Unlock()
	f.cached = ""
	f.cacheExpiry = time.Time{}
}

// cpuSignal reads a CPU identifier. Windows exposes one through the
// environment, Linux through /proc/cpuinfo; elsewhere the OS and
// architecture stand in.
type cpuSignal struct{}

func (cpuSignal) Name() string { return "cpu_id" }

func (cpuSignal) Read() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if procID := os.Getenv("PROCESSOR_IDENTIFIER"); procID != "" {
			return procID, nil
		}
		return "", fmt.Errorf("PROCESSOR_IDENTIFIER not set")
	case "linux":
		data, err := os.ReadFile("/proc/cpuinfo")
		if err != nil {
			return "", fmt.Errorf("read /proc/cpuinfo: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, "model name") || strings.HasPrefix(line, "Serial") {
				if _, value, ok := strings.Cut(line, ":"); ok {
					return strings.TrimSpace(value), nil
				}
			}
		}
		return "", fmt.Errorf("no cpu identifier in /proc/cpuinfo")
	case "darwin":
		return fmt.Sprintf("darwin-%s", runtime.GOARCH), nil
	default:
		return fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH), nil
	}
}

// diskSignal reads the serial number of the first block device that
// exposes one. Only Linux publishes these through sysfs; on other
// platforms the signal is unavailable.
type diskSignal struct{}

func (diskSignal) Name() string { return "disk_serial" }

func (diskSignal) Read() (string, error) {
	if runtime.GOOS != "linux" {
		return "", fmt.Errorf("disk serial not readable on %s", runtime.GOOS)
	}
	entries, err := os.ReadDir("/sys/block")
	if err != nil {
		return "", fmt.Errorf("read /sys/block: %w", err)
	}
	for _, entry := range entries {
		serialPath := filepath.Join("/sys/block", entry.Name(), "device", "serial")
		data, err := os.ReadFile(serialPath)
		if err != nil {
			continue
		}
		if serial := strings.TrimSpace(string(data)); serial != "" {
			return serial, nil
		}
	}
	return "", fmt.Errorf("no block device serial found")
}

// macSignal reads the MAC address of the first up, non-loopback
// interface, falling back to any interface with a hardware address.
type macSignal struct{}

func (macSignal) Name() string { return "mac_address" }

func (macSignal) Read() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list network interfaces: %w", err)
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if mac := iface.HardwareAddr.String(); mac != "" && mac != "00:00:00:00:00:00" {
			return mac, nil
		}
	}

	for _, iface := range interfaces {
		if mac := iface.HardwareAddr.String(); mac != "" && mac != "00:00:00:00:00:00" {
			return mac, nil
		}
	}

	return "", fmt.Errorf("no usable MAC address found")
}

// systemUUIDSignal reads the SMBIOS product UUID where the platform
// publishes it without elevated privileges.
type systemUUIDSignal struct{}

func (systemUUIDSignal) Name() string { return "system_uuid" }

func (systemUUIDSignal) Read() (string, error) {
	if runtime.GOOS != "linux" {
		return "", fmt.Errorf("system UUID not readable on %s", runtime.GOOS)
	}
	data, err := os.ReadFile("/sys/class/dmi/id/product_uuid")
	if err != nil {
		return "", fmt.Errorf("read product_uuid: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// boardSerialSignal reads the motherboard serial number from sysfs.
type boardSerialSignal struct{}

func (boardSerialSignal) Name() string { return "board_serial" }

func (boardSerialSignal) Read() (string, error) {
	if runtime.GOOS != "linux" {
		return "", fmt.Errorf("board serial not readable on %s", runtime.GOOS)
	}
	data, err := os.ReadFile("/sys/class/dmi/id/board_serial")
	if err != nil {
		return "", fmt.Errorf("read board_serial: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// userSignal reports the current username. Always available: falls
// back to "unknown" rather than erroring so the fingerprint never
// collapses to nothing.
type userSignal struct{}

func (userSignal) Name() string { return "username" }

func (userSignal) Read() (string, error) {
	if name := os.Getenv("USERNAME"); name != "" {
		return name, nil
	}
	if name := os.Getenv("USER"); name != "" {
		return name, nil
	}
	return "unknown", nil
}

// hostSignal reports the normalized hostname, "unknown-host" when the
// OS refuses to say.
type hostSignal struct{}

func (hostSignal) Name() string { return "hostname" }

func (hostSignal) Read() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown-host", nil
	}
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	if hostname == "" {
		return "unknown-host", nil
	}
	return hostname, nil
}
