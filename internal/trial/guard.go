package trial

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	trialerrors "ticketzero/internal/errors"
)

// bannerWarningDays is the remaining-time threshold below which the
// non-blocking reminder banner appears.
const bannerWarningDays = 2.0

// Guard is the user-facing decision gate over the trial manager: it
// checks status, renders the appropriate message and, during first run,
// walks the user through interactive activation.
//
//	guard, err := trial.NewGuard(cfg)
//	if err != nil { ... }
//	if !guard.RequireValidTrial(false) {
//		os.Exit(1)
//	}
type Guard struct {
	appName string
	manager *Manager
	status  *Status
	in      io.Reader
	out     io.Writer
	exit    func(int)
}

// NewGuard creates a guard with its own manager bound to the current
// machine, reading prompts from stdin and writing to stdout.
func NewGuard(cfg Config) (*Guard, error) {
	manager, err := NewManager(cfg)
	if err != nil {
		return nil, err
	}
	return NewGuardWithManager(manager), nil
}

// NewGuardWithManager wraps an existing manager. Hosts that share a
// manager between the guard and their own status surfaces use this.
func NewGuardWithManager(manager *Manager) *Guard {
	return &Guard{
		appName: manager.cfg.AppName,
		manager: manager,
		in:      os.Stdin,
		out:     os.Stdout,
		exit:    os.Exit,
	}
}

// SetIO redirects the guard's interactive input and output. Tests and
// embedded hosts with their own terminals use this.
func (g *Guard) SetIO(in io.Reader, out io.Writer) {
	g.in = in
	g.out = out
}

// Manager exposes the underlying manager for hosts wanting direct
// access to activation or the purchase link.
func (g *Guard) Manager() *Manager {
	return g.manager
}

// RequireValidTrial checks the trial and, when it is not active, prints
// the status-specific message and returns false. With autoExit set the
// process terminates instead of returning. A successful interactive
// activation during the prompt updates the cached status but the call
// still returns false; the next check reports active.
func (g *Guard) RequireValidTrial(autoExit bool) bool {
	status := g.manager.CheckStatus(context.Background())
	g.status = &status

	if !status.Active {
		g.ShowTrialMessage()

		if autoExit {
			g.exit(1)
		}
		return false
	}

	return true
}

// ShowTrialMessage renders the full status panel for the current state.
func (g *Guard) ShowTrialMessage() {
	status := g.GetStatus()

	divider := strings.Repeat("=", 70)
	fmt.Fprintf(g.out, "\n%s\n", divider)
	fmt.Fprintf(g.out, "  %s - TRIAL LICENSE\n", g.appName)
	fmt.Fprintln(g.out, divider)

	switch status.State {
	case StateNotActivated:
		g.showActivationPrompt()
	case StateActive:
		g.showActiveMessage(status)
	case StateExpired:
		g.showExpiredMessage(status)
	case StateInvalid, StateTampered, StateClockTampered:
		g.showErrorMessage(status)
	}

	fmt.Fprintf(g.out, "%s\n\n", divider)
}

func (g *Guard) showActivationPrompt() {
	fmt.Fprintln(g.out, "\n  No trial license found.")
	fmt.Fprintf(g.out, "\n  Start your FREE %d-DAY TRIAL now!\n", g.manager.TrialDays())
	fmt.Fprintln(g.out, "\n  Features:")
	fmt.Fprintln(g.out, "    - Full access to all features")
	fmt.Fprintln(g.out, "    - No credit card required")
	fmt.Fprintln(g.out, "    - No limitations")
	fmt.Fprint(g.out, "\n  Would you like to start your trial? (yes/no): ")

	response, err := bufio.NewReader(g.in).ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(g.out, "\n  Trial activation cancelled.")
		return
	}

	response = strings.ToLower(strings.TrimSpace(response))
	if response != "yes" && response != "y" {
		fmt.Fprintln(g.out, "\n  Trial not activated.")
		return
	}

	activation, err := g.manager.Activate(context.Background())
	if err != nil {
		fmt.Fprintf(g.out, "\n  Error: %v\n", err)
		return
	}

	fmt.Fprintln(g.out, "\n  Trial activated successfully!")
	fmt.Fprintf(g.out, "  Your trial expires in %d days\n", g.manager.TrialDays())
	fmt.Fprintf(g.out, "  Expiry date: %s\n", time.Unix(activation.Record.ExpiryTime, 0).Format(dateFormat))

	status := g.manager.CheckStatus(context.Background())
	g.status = &status
}

func (g *Guard) showActiveMessage(status Status) {
	fmt.Fprintln(g.out, "\n  Trial Active")
	fmt.Fprintf(g.out, "\n  Time Remaining: %.1f days (%.1f hours)\n", status.DaysRemaining, status.HoursRemaining)
	fmt.Fprintf(g.out, "  Expires: %s\n", status.ExpiryDate)

	if status.DaysRemaining < 1 {
		fmt.Fprintln(g.out, "\n  TRIAL ENDING SOON!")
		fmt.Fprintln(g.out, "     Purchase a license to continue using after trial expires.")
	}
}

func (g *Guard) showExpiredMessage(status Status) {
	fmt.Fprintln(g.out, "\n  Trial Expired")
	fmt.Fprintf(g.out, "\n  Your trial expired on: %s\n", status.ExpiredDate)
	fmt.Fprintf(g.out, "\n  To continue using %s, please purchase a license.\n", g.appName)
	fmt.Fprintln(g.out, "\n  Purchase Options:")
	fmt.Fprintf(g.out, "    - Email: %s\n", g.manager.cfg.SupportEmail)
	fmt.Fprintf(g.out, "    - Subject: %s License Purchase\n", g.appName)
	fmt.Fprintln(g.out, "\n  Why purchase?")
	fmt.Fprintln(g.out, "    - Unlimited usage")
	fmt.Fprintln(g.out, "    - Priority support")
	fmt.Fprintln(g.out, "    - Free updates")
}

func (g *Guard) showErrorMessage(status Status) {
	fmt.Fprintf(g.out, "\n  Trial Error: %s\n", status.State)
	fmt.Fprintf(g.out, "\n  %s\n", status.Message)
	fmt.Fprintf(g.out, "\n  Please contact support: %s\n", g.manager.cfg.SupportEmail)
}

// GetStatus returns the last computed status, computing it on first
// use. Hosts wanting custom messaging read this instead of the panel.
func (g *Guard) GetStatus() Status {
	if g.status == nil {
		status := g.manager.CheckStatus(context.Background())
		g.status = &status
	}
	return *g.status
}

// IsValid reports whether the trial is currently active.
func (g *Guard) IsValid() bool {
	return g.manager.IsValid(context.Background())
}

// DaysRemaining returns the days left in the trial, zero when it is
// not active.
func (g *Guard) DaysRemaining() float64 {
	return g.GetStatus().DaysRemaining
}

// ShowTrialInfoBanner prints a one-line reminder, and only when the
// trial is active with fewer than two days remaining.
func (g *Guard) ShowTrialInfoBanner() {
	status := g.manager.CheckStatus(context.Background())
	g.status = &status

	if !status.Active || status.DaysRemaining >= bannerWarningDays {
		return
	}

	fmt.Fprintf(g.out, "\nTrial Info: %.1f days remaining | Purchase: %s\n\n",
		status.DaysRemaining, g.manager.cfg.SupportEmail)
}

// Protect wraps fn so it only runs while the trial is valid; otherwise
// the trial's state error is returned and the status message printed.
func (g *Guard) Protect(fn func() error) func() error {
	return func() error {
		if !g.RequireValidTrial(false) {
			if err := g.GetStatus().State.Err(); err != nil {
				return err
			}
			return trialerrors.ErrTrialNotActivated
		}
		return fn()
	}
}
