// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Health checks for an opsdesk installation.
//
// Command: doctor
//
// Checks the configuration, the state store, the table catalog and whether
// the assistant backend answers. Exits non-zero when any check fails.
//
// Flags:
//
//	--json              Output in JSON format

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/opsdesk/internal/catalog"
	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/session"
	"github.com/jeranaias/opsdesk/internal/storage"
	"github.com/jeranaias/opsdesk/internal/ui/styles"
)

// backendCheckTimeout bounds the reachability check.
const backendCheckTimeout = 3 * time.Second

var (
	checkPassStyle = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	checkWarnStyle = lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	checkFailStyle = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)

	fixStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			PaddingLeft(2)
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	CheckPass CheckStatus = iota
	CheckWarn
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarn:
		return "warn"
	case CheckFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns the styled marker for the check status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return checkPassStyle.Render("[OK]")
	case CheckWarn:
		return checkWarnStyle.Render("[!!]")
	case CheckFail:
		return checkFailStyle.Render("[FAIL]")
	default:
		return "?"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"-"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"`
}

// Render returns a formatted string representation of the health check.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), c.Message)
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

// doctorReport is the --json payload.
type doctorReport struct {
	Checks []doctorEntry `json:"checks"`
	Passed int           `json:"passed"`
	Warned int           `json:"warned"`
	Failed int           `json:"failed"`
}

type doctorEntry struct {
	*HealthCheck
	Status string `json:"status"`
}

// ErrChecksFailed is returned by doctor when at least one check fails.
var ErrChecksFailed = errors.New("health checks failed")

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctor runs every check and prints the results.
func HandleDoctor(ctx context.Context, cfg *config.Config, args Args) error {
	ApplyArgs(cfg, args)
	checks := runAllChecks(ctx, cfg)

	var report doctorReport
	for _, c := range checks {
		switch c.Status {
		case CheckPass:
			report.Passed++
		case CheckWarn:
			report.Warned++
		case CheckFail:
			report.Failed++
		}
		report.Checks = append(report.Checks, doctorEntry{HealthCheck: c, Status: c.Status.String()})
	}

	err := OutputJSON(os.Stdout, args.JSON, "doctor", func() (interface{}, error) {
		if !args.JSON {
			fmt.Println(TitleStyle.Render("opsdesk doctor"))
			fmt.Println()
			for _, c := range checks {
				fmt.Println(c.Render())
			}
			fmt.Println()
			fmt.Println(DimStyle.Render(fmt.Sprintf("%d passed, %d warnings, %d failed",
				report.Passed, report.Warned, report.Failed)))
		}
		return report, nil
	})
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return ErrChecksFailed
	}
	return nil
}

func runAllChecks(ctx context.Context, cfg *config.Config) []*HealthCheck {
	return []*HealthCheck{
		checkConfigValid(cfg),
		checkStateStore(ctx, cfg),
		checkCatalog(cfg),
		checkBackend(ctx, cfg),
	}
}

// =============================================================================
// CHECKS
// =============================================================================

func checkConfigValid(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{Name: "config"}
	if err := cfg.Validate(); err != nil {
		check.Status = CheckFail
		check.Message = "Configuration invalid: " + err.Error()
		check.Fix = "Run: opsdesk config show"
		return check
	}
	check.Status = CheckPass
	check.Message = "Configuration valid"
	return check
}

func checkStateStore(ctx context.Context, cfg *config.Config) *HealthCheck {
	check := &HealthCheck{Name: "state"}
	kv, err := storage.Open(ctx, stateOptions(cfg))
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("State store (%s) unavailable: %v", cfg.State.Backend, err)
		check.Fix = "Run: opsdesk config set state.backend bolt"
		return check
	}
	defer kv.Close()

	store := session.NewStore(kv)
	if err := store.Load(ctx); err != nil {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("State store (%s) opened but not readable: %v", cfg.State.Backend, err)
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("State store (%s) ready", cfg.State.Backend)
	if cfg.State.Backend == storage.BackendMemory {
		check.Status = CheckWarn
		check.Message = "State store is in memory; the session is forgotten on exit"
	}
	return check
}

func checkCatalog(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{Name: "catalog"}
	n := len(cfg.Catalog.Tables)
	if cfg.Catalog.Path != "" {
		tables, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			check.Status = CheckFail
			check.Message = "Catalog unreadable: " + err.Error()
			return check
		}
		n = len(tables)
	}
	if n == 0 {
		check.Status = CheckWarn
		check.Message = "No tables configured; @ mentions will find nothing"
		check.Fix = "Add [[catalog.tables]] to the config or set catalog.path"
		return check
	}
	check.Status = CheckPass
	check.Message = fmt.Sprintf("Catalog has %d tables", n)
	return check
}

// checkBackend reports the backend reachable when it answers HTTP at all.
func checkBackend(ctx context.Context, cfg *config.Config) *HealthCheck {
	check := &HealthCheck{Name: "backend"}
	ctx, cancel := context.WithTimeout(ctx, backendCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Backend.BaseURL, nil)
	if err != nil {
		check.Status = CheckFail
		check.Message = "Backend URL invalid: " + err.Error()
		return check
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		check.Status = CheckFail
		check.Message = "Backend not reachable at " + cfg.Backend.BaseURL
		check.Fix = "Run: opsdesk serve-mock"
		return check
	}
	resp.Body.Close()

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Backend reachable at %s (HTTP %d)", cfg.Backend.BaseURL, resp.StatusCode)
	return check
}
