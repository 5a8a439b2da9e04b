package trial

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"ticketzero/internal/security"
)

// replicaStore keeps encrypted copies of the trial record at several
// filesystem locations so a single accidental deletion does not lose
// the record. Reads take the first replica that decrypts, in a fixed
// order; divergent replicas are not reconciled.
type replicaStore struct {
	paths  []string
	cipher *security.TrialCipher
	logger *slog.Logger
}

func newReplicaStore(cipher *security.TrialCipher, paths []string, logger *slog.Logger) *replicaStore {
	return &replicaStore{
		paths:  paths,
		cipher: cipher,
		logger: logger,
	}
}

// storageLocations resolves the default replica paths: the user home
// directory, the temp directory, and the platform app-data directory.
// Filenames are obfuscated per machine so casual directory listings do
// not reveal them.
func storageLocations(appName, machineID string) []string {
	var locations []string

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, security.ObfuscateFilename(appName, machineID)))
	}

	locations = append(locations, filepath.Join(os.TempDir(), security.ObfuscateFilename(appName+"_t", machineID)))

	if appData := appDataDir(); appData != "" {
		locations = append(locations, filepath.Join(appData, security.ObfuscateFilename(appName, machineID)))
	}

	return locations
}

// appDataDir returns the platform-specific application data directory,
// empty when none can be resolved.
func appDataDir() string {
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, ".cache")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, ".cache")
	}
	return filepath.Join(home, ".local", "share")
}

// load returns the first replica that decrypts and parses, or false
// when no location yields a usable record. Unreadable and undecryptable
// replicas are treated the same as absent ones.
func (s *replicaStore) load(ctx context.Context, machineID string) (Record, bool) {
	for _, path := range s.paths {
		blob, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		plaintext, ok := s.cipher.DecryptTrialData(blob, machineID)
		if !ok {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "replica did not decrypt",
				slog.String("component", "trial_store"),
				slog.String("path", path),
			)
			continue
		}

		var record Record
		if err := json.Unmarshal(plaintext, &record); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "replica decrypted but did not parse",
				slog.String("component", "trial_store"),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}

		return record, true
	}

	return Record{}, false
}

// save encrypts the record once and writes it to every location.
// Per-location failures are logged and skipped; the write is
// best-effort, not atomic or transactional. Returns the number of
// replicas written.
func (s *replicaStore) save(ctx context.Context, machineID string, record Record) int {
	plaintext, err := json.Marshal(record)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to marshal trial record",
			slog.String("component", "trial_store"),
			slog.String("error", err.Error()),
		)
		return 0
	}

	blob, err := s.cipher.EncryptTrialData(plaintext, machineID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to encrypt trial record",
			slog.String("component", "trial_store"),
			slog.String("error", err.Error()),
		)
		return 0
	}

	written := 0
	for _, path := range s.paths {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to create replica directory",
				slog.String("component", "trial_store"),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := os.WriteFile(path, blob, 0o600); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to write replica",
				slog.String("component", "trial_store"),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := hideFile(path); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "could not set hidden attribute",
				slog.String("component", "trial_store"),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}

		written++
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "trial record saved",
		slog.String("component", "trial_store"),
		slog.Int("replicas_written", written),
		slog.Int("replicas_total", len(s.paths)),
	)

	return written
}
