package attendance

import (
	"context"
	"errors"
	"strings"

	"github.com/arrajeevchandar/messhall/internal/mealclock"
	"github.com/arrajeevchandar/messhall/internal/roster"
)

// ErrReportNotVisible gates early report queries. It is distinct from an
// empty report: before the visibility hour there is no report at all.
var ErrReportNotVisible = errors.New("report is not yet available")

// MemberLister supplies the active roster in a stable order.
type MemberLister interface {
	ListActive(ctx context.Context) ([]roster.Member, error)
}

// ReportEntry is one roster member's line in the day's report.
type ReportEntry struct {
	Rank     int    `json:"rank"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url,omitempty"`
	Status   string `json:"status"`
}

// Reporter joins the active roster against a day's submitted records.
type Reporter struct {
	records Store
	members MemberLister
	clock   mealclock.Clock
	policy  mealclock.Policy
}

// NewReporter creates a reporter.
func NewReporter(records Store, members MemberLister, clock mealclock.Clock, policy mealclock.Policy) *Reporter {
	return &Reporter{records: records, members: members, clock: clock, policy: policy}
}

// BuildReport produces the day's attendance report for a meal. Members with
// no record for the date are counted as attending: the institute runs an
// opt-out model, and only an explicit "no" removes a plate. An empty roster
// yields a valid zero-entry report.
func (r *Reporter) BuildReport(ctx context.Context, meal mealclock.Meal, date string) ([]ReportEntry, error) {
	if !r.policy.ReportVisibleAt(r.clock.Now()) {
		return nil, ErrReportNotVisible
	}

	members, err := r.members.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	records, err := r.records.ListByDate(ctx, meal, date)
	if err != nil {
		return nil, err
	}

	byEmail := make(map[string]Record, len(records))
	for _, rec := range records {
		byEmail[strings.ToLower(rec.Email)] = rec
	}

	report := make([]ReportEntry, 0, len(members))
	for i, m := range members {
		status := RosterDefault
		if rec, ok := byEmail[strings.ToLower(m.Email)]; ok {
			if normalized := NormalizeStatus(rec.Status); normalized != "" {
				status = normalized
			}
		}
		report = append(report, ReportEntry{
			Rank:     i + 1,
			Name:     m.Name,
			Email:    m.Email,
			PhotoURL: m.PhotoURL,
			Status:   status,
		})
	}
	return report, nil
}
