package trial

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// auditEvent is one line of the activation audit trail.
type auditEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	AppName   string    `json:"app_name"`
	MachineID string    `json:"machine_id"`
	Detail    string    `json:"detail,omitempty"`
}

// auditLog appends activation events to a JSON-lines file. Purely
// additive bookkeeping: validation never consults it, and a missing or
// unwritable file only produces a log warning.
type auditLog struct {
	path   string
	logger *slog.Logger
}

// newAuditLog returns nil when no audit file is configured; all methods
// are nil-safe.
func newAuditLog(path string, logger *slog.Logger) *auditLog {
	if path == "" {
		return nil
	}
	return &auditLog{path: path, logger: logger}
}

// record appends one event. The machine identifier is truncated so the
// audit file cannot be used to reconstruct record keys.
func (a *auditLog) record(ctx context.Context, action, appName, machineID, detail string) {
	if a == nil {
		return
	}

	event := auditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Action:    action,
		AppName:   appName,
		MachineID: maskMachineID(machineID),
		Detail:    detail,
	}

	if err := a.append(event); err != nil {
		a.logger.LogAttrs(ctx, slog.LevelWarn, "failed to write audit event",
			slog.String("component", "trial_audit"),
			slog.String("path", a.path),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

func (a *auditLog) append(event auditEvent) error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write(append(data, '\n'))
	return err
}
