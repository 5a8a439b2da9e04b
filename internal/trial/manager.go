package trial

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	trialerrors "ticketzero/internal/errors"
	"ticketzero/internal/security"
)

const (
	// DefaultTrialLength is the trial validity window fixed at
	// activation. It is never extended.
	DefaultTrialLength = 3 * 24 * time.Hour

	// clockSkewTolerance is how far in the future a stored start time
	// may sit before the clock is considered tampered with. Catches the
	// clock being rolled backward after activation; advancing the clock
	// only fast-expires the trial, which needs no defense.
	clockSkewTolerance = 1 * time.Hour

	dateFormat = "2006-01-02 15:04"
)

// Config carries everything the trial system needs from its host. The
// component itself reads no environment variables and takes no flags;
// hosts resolve those concerns and pass the result here.
type Config struct {
	// AppName brands messages and scopes record storage.
	AppName string
	// TrialLength defaults to DefaultTrialLength when zero.
	TrialLength time.Duration
	// Salt feeds record key derivation. Deployment-specific; must be
	// non-empty.
	Salt string
	// SupportEmail appears in expiry and error messaging.
	SupportEmail string
	// StoragePaths overrides the default replica locations. Tests use
	// this; production leaves it nil.
	StoragePaths []string
	// AuditFile, when set, receives JSON-lines activation audit events.
	AuditFile string
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "TicketZero"
	}
	if c.TrialLength <= 0 {
		c.TrialLength = DefaultTrialLength
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Activation reports a successful trial activation.
type Activation struct {
	Record        Record  `json:"trial_data"`
	DaysRemaining float64 `json:"days_remaining"`
}

// Manager owns the trial record lifecycle: activation, redundant
// persistence, validation and tamper detection. All operations are
// local, synchronous and near-instant; there is no network involvement.
type Manager struct {
	cfg           Config
	fingerprinter *security.Fingerprinter
	store         *replicaStore
	audit         *auditLog
	machineID     string
	metrics       *Metrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewManager creates a manager bound to the current machine. The
// machine identifier is derived once up front; storage locations are
// resolved from it unless cfg.StoragePaths overrides them.
func NewManager(cfg Config) (*Manager, error) {
	cfg.applyDefaults()

	cipher, err := security.NewTrialCipher(cfg.Salt)
	if err != nil {
		return nil, fmt.Errorf("trial cipher: %w", err)
	}

	fingerprinter := security.NewFingerprinter()
	machineID := fingerprinter.MachineID()

	paths := cfg.StoragePaths
	if len(paths) == 0 {
		paths = storageLocations(cfg.AppName, machineID)
	}

	m := &Manager{
		cfg:           cfg,
		fingerprinter: fingerprinter,
		store:         newReplicaStore(cipher, paths, cfg.Logger),
		audit:         newAuditLog(cfg.AuditFile, cfg.Logger),
		machineID:     machineID,
		logger:        cfg.Logger,
		now:           time.Now,
	}

	m.logInfo(context.Background(), "manager_initialization", "trial manager initialized",
		slog.String("app_name", cfg.AppName),
		slog.String("machine_id_masked", maskMachineID(machineID)),
		slog.Int("storage_locations", len(paths)),
		slog.Duration("trial_length", cfg.TrialLength),
	)

	return m, nil
}

// SetMetrics installs OpenTelemetry metrics. Optional; the manager is
// fully functional without them.
func (m *Manager) SetMetrics(metrics *Metrics) {
	m.metrics = metrics
}

// MachineID returns the identifier of the machine this manager is
// bound to.
func (m *Manager) MachineID() string {
	return m.machineID
}

// TrialDays returns the configured trial length in whole days, for
// messaging.
func (m *Manager) TrialDays() int {
	return int(m.cfg.TrialLength.Hours() / 24)
}

// Activate starts a new trial on this machine. It fails with
// ErrTrialAlreadyActivated when any replica already yields a readable
// record; the validity window is fixed here and never moves.
func (m *Manager) Activate(ctx context.Context) (*Activation, error) {
	if m.metrics != nil {
		m.metrics.ActivationAttempts.Add(ctx, 1)
	}

	if existing, ok := m.store.load(ctx, m.machineID); ok {
		m.logWarn(ctx, "trial_activation", "activation rejected, trial already present",
			slog.String("machine_id_masked", maskMachineID(m.machineID)),
			slog.Int64("existing_start_time", existing.StartTime),
		)
		m.audit.record(ctx, "activation_rejected", m.cfg.AppName, m.machineID, "trial already activated")
		if m.metrics != nil {
			m.metrics.ActivationFailures.Add(ctx, 1,
				metric.WithAttributes(attribute.String("reason", "already_activated")))
		}
		return nil, trialerrors.ErrTrialAlreadyActivated
	}

	record := newRecord(m.machineID, m.cfg.AppName, m.now(), m.cfg.TrialLength)

	written := m.store.save(ctx, m.machineID, record)
	if written == 0 {
		m.audit.record(ctx, "activation_failed", m.cfg.AppName, m.machineID, "no replica written")
		if m.metrics != nil {
			m.metrics.ActivationFailures.Add(ctx, 1,
				metric.WithAttributes(attribute.String("reason", "storage_failure")))
		}
		return nil, fmt.Errorf("could not persist trial record to any storage location")
	}

	m.audit.record(ctx, "activated", m.cfg.AppName, m.machineID,
		fmt.Sprintf("%d of %d replicas written", written, len(m.store.paths)))
	if m.metrics != nil {
		m.metrics.ActivationSuccess.Add(ctx, 1)
		m.metrics.ReplicaWrites.Add(ctx, int64(written))
	}

	m.logInfo(ctx, "trial_activation", "trial activated",
		slog.String("machine_id_masked", maskMachineID(m.machineID)),
		slog.String("expiry_date", time.Unix(record.ExpiryTime, 0).Format(dateFormat)),
		slog.Int("replicas_written", written),
	)

	return &Activation{
		Record:        record,
		DaysRemaining: m.cfg.TrialLength.Hours() / 24,
	}, nil
}

// CheckStatus loads and validates the trial record, returning one of
// the terminal states. It never fails: missing, unreadable and
// undecryptable records all collapse to not_activated.
func (m *Manager) CheckStatus(ctx context.Context) Status {
	start := time.Now()
	status := m.evaluate(ctx)

	if m.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("state", string(status.State)))
		m.metrics.StatusChecks.Add(ctx, 1, attrs)
		m.metrics.StatusCheckDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
		if status.State == StateTampered || status.State == StateClockTampered {
			m.metrics.TamperEvents.Add(ctx, 1, attrs)
		}
	}

	m.logDebug(ctx, "trial_status", "trial status checked",
		slog.String("state", string(status.State)),
		slog.Bool("active", status.Active),
	)

	return status
}

func (m *Manager) evaluate(ctx context.Context) Status {
	record, ok := m.store.load(ctx, m.machineID)
	if !ok {
		return Status{
			Active:      false,
			State:       StateNotActivated,
			Message:     fmt.Sprintf("No trial found. Start your free %d-day trial!", m.TrialDays()),
			CanActivate: true,
		}
	}

	// Record decrypted under this machine's key but claims another
	// machine: someone copied trial files across machines.
	if record.MachineID != m.machineID {
		return Status{
			Active:  false,
			State:   StateInvalid,
			Message: "Trial is locked to a different machine",
		}
	}

	if !record.checksumValid() {
		m.logWarn(ctx, "trial_status", "trial record checksum mismatch",
			slog.String("machine_id_masked", maskMachineID(m.machineID)),
		)
		return Status{
			Active:  false,
			State:   StateTampered,
			Message: "Trial data has been tampered with",
		}
	}

	now := m.now()

	// A start time ahead of the clock means the clock was rolled
	// backward after activation. The forward direction only shortens
	// the trial, so it is left alone.
	if record.StartTime > now.Add(clockSkewTolerance).Unix() {
		m.logWarn(ctx, "trial_status", "trial start time is in the future",
			slog.Int64("start_time", record.StartTime),
			slog.Int64("current_time", now.Unix()),
		)
		return Status{
			Active:  false,
			State:   StateClockTampered,
			Message: "System clock has been tampered with",
		}
	}

	if now.Unix() >= record.ExpiryTime {
		daysExpired := int(float64(now.Unix()-record.ExpiryTime) / (24 * 60 * 60))
		return Status{
			Active:      false,
			State:       StateExpired,
			Message:     fmt.Sprintf("Trial expired %d days ago", daysExpired),
			DaysExpired: daysExpired,
			ExpiredDate: time.Unix(record.ExpiryTime, 0).Format(dateFormat),
		}
	}

	remaining := record.ExpiryTime - now.Unix()
	daysRemaining := float64(remaining) / (24 * 60 * 60)
	hoursRemaining := float64(remaining) / 3600

	return Status{
		Active:         true,
		State:          StateActive,
		Message:        fmt.Sprintf("Trial active - %.1f days remaining", daysRemaining),
		DaysRemaining:  daysRemaining,
		HoursRemaining: hoursRemaining,
		StartDate:      time.Unix(record.StartTime, 0).Format(dateFormat),
		ExpiryDate:     time.Unix(record.ExpiryTime, 0).Format(dateFormat),
	}
}

// IsValid is the boolean shortcut over CheckStatus.
func (m *Manager) IsValid(ctx context.Context) bool {
	return m.CheckStatus(ctx).Active
}

// PurchaseURL builds the mailto link shown when the trial runs out.
func (m *Manager) PurchaseURL() string {
	subject := strings.ReplaceAll(m.cfg.AppName+" License Purchase", " ", "%20")
	return fmt.Sprintf("mailto:%s?subject=%s", m.cfg.SupportEmail, subject)
}
