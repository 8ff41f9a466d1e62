// Package report renders the aggregate state of the stack: per-service
// status, reachable endpoints, and whether every tier was satisfied.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"stackctl/internal/catalog"
	"stackctl/internal/executor"
	"stackctl/internal/lifecycle"
)

// ServiceLine is one service's row in a summary.
type ServiceLine struct {
	Name      string
	Tier      catalog.Tier
	Status    string
	Endpoints []string
	Attempts  int
	Elapsed   time.Duration
}

// Summary is a read-only snapshot of the stack's state.
type Summary struct {
	SessionID         string // empty for cold status queries
	Phase             string
	Services          []ServiceLine
	AllTiersSatisfied bool
}

// FromSession builds a summary from a finished (or aborted) lifecycle
// session. Every failure path still produces one of these so the
// operator can see exactly which services are in which state.
func FromSession(session *lifecycle.Session, services []catalog.ServiceDefinition) Summary {
	summary := Summary{
		SessionID:         session.ID,
		Phase:             string(session.Phase()),
		AllTiersSatisfied: session.Phase() == lifecycle.PhaseRunning,
	}

	for _, svc := range services {
		tier, _ := svc.EffectiveTier()
		line := ServiceLine{
			Name:      svc.Name,
			Tier:      tier,
			Status:    string(session.Status(svc.Name)),
			Endpoints: svc.Endpoints,
		}
		if result, ok := session.Result(svc.Name); ok {
			line.Attempts = result.Attempts
			line.Elapsed = result.Elapsed
		}
		summary.Services = append(summary.Services, line)
	}

	sortLines(summary.Services)
	return summary
}

// Current builds a summary from a cold executor query, without any
// lifecycle transition. It must not mutate executor state; the only
// call it makes is ListRunning (plus optional endpoint resolution for
// running services).
func Current(ctx context.Context, exec executor.Executor, services []catalog.ServiceDefinition) (Summary, error) {
	running, err := exec.ListRunning(ctx)
	if err != nil {
		return Summary{}, err
	}
	runningSet := make(map[string]bool, len(running))
	for _, name := range running {
		runningSet[name] = true
	}

	resolver, canResolve := exec.(executor.EndpointResolver)

	summary := Summary{Phase: "Status", AllTiersSatisfied: true}
	for _, svc := range services {
		tier, _ := svc.EffectiveTier()
		line := ServiceLine{
			Name:      svc.Name,
			Tier:      tier,
			Status:    string(lifecycle.StatusStopped),
			Endpoints: svc.Endpoints,
		}
		if runningSet[svc.Name] {
			line.Status = string(lifecycle.StatusReady)
			if canResolve {
				if eps, err := resolver.Endpoints(ctx, svc.Name); err == nil && len(eps) > 0 {
					line.Endpoints = eps
				}
			}
		} else {
			summary.AllTiersSatisfied = false
		}
		summary.Services = append(summary.Services, line)
	}

	sortLines(summary.Services)
	return summary, nil
}

// sortLines orders rows by tier, then name, so output is stable.
func sortLines(lines []ServiceLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Tier.Order() != lines[j].Tier.Order() {
			return lines[i].Tier.Order() < lines[j].Tier.Order()
		}
		return lines[i].Name < lines[j].Name
	})
}

// Render writes the summary as an aligned text table.
func (s Summary) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if s.SessionID != "" {
		fmt.Fprintf(tw, "Session:\t%s\n", s.SessionID)
	}
	fmt.Fprintf(tw, "Phase:\t%s\n", s.Phase)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SERVICE\tTIER\tSTATUS\tENDPOINTS\tPROBE")

	for _, line := range s.Services {
		endpoints := "-"
		if len(line.Endpoints) > 0 {
			endpoints = strings.Join(line.Endpoints, ", ")
		}
		probeInfo := "-"
		if line.Attempts > 0 {
			probeInfo = fmt.Sprintf("%d attempt(s), %s", line.Attempts, line.Elapsed.Round(time.Millisecond))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", line.Name, line.Tier, line.Status, endpoints, probeInfo)
	}

	fmt.Fprintln(tw)
	if s.AllTiersSatisfied {
		fmt.Fprintln(tw, "All tiers satisfied.")
	} else {
		fmt.Fprintln(tw, "Not all services are ready.")
	}

	return tw.Flush()
}
