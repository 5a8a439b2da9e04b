package trial

import (
	"context"
	"log/slog"
)

// logAction is the single structured-logging funnel for the manager.
// Every entry carries the component, the action being performed and the
// human-readable result, so log pipelines can group trial events
// without parsing messages.
func (m *Manager) logAction(ctx context.Context, level slog.Level, action, result string, attrs ...slog.Attr) {
	allAttrs := []slog.Attr{
		slog.String("component", "trial_manager"),
		slog.String("action", action),
		slog.String("app_name", m.cfg.AppName),
	}
	allAttrs = append(allAttrs, attrs...)

	m.logger.LogAttrs(ctx, level, result, allAttrs...)
}

func (m *Manager) logDebug(ctx context.Context, action, result string, attrs ...slog.Attr) {
	m.logAction(ctx, slog.LevelDebug, action, result, attrs...)
}

func (m *Manager) logInfo(ctx context.Context, action, result string, attrs ...slog.Attr) {
	m.logAction(ctx, slog.LevelInfo, action, result, attrs...)
}

func (m *Manager) logWarn(ctx context.Context, action, result string, attrs ...slog.Attr) {
	m.logAction(ctx, slog.LevelWarn, action, result, attrs...)
}

// maskMachineID keeps only the edges of a machine identifier so logs
// and audit entries cannot be used to reconstruct record keys.
func maskMachineID(id string) string {
	if len(id) <= 12 {
		return "****"
	}
	return id[:6] + "****" + id[len(id)-6:]
}
