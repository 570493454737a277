package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"carelog/internal/adapters/email"
	"carelog/internal/application/projections"
)

// DefaultOverdueThresholdDays is the cutoff for including a person in the digest.
const DefaultOverdueThresholdDays = 30

// ErrNoRecipient is returned when no digest recipient is configured.
var ErrNoRecipient = errors.New("digest recipient is not configured")

// OverdueDigestInput carries input for the overdue digest orchestrator.
type OverdueDigestInput struct {
	Recipient     string
	From          string    // optional: sender address; empty uses the sender's default
	ThresholdDays int       // people overdue at least this many days; 0 means the default
	Now           time.Time // optional: if zero, time.Now() is used
}

// OverdueDigestDeps holds dependencies for the overdue digest.
type OverdueDigestDeps struct {
	EntryStore projections.EntryStore
	Sender     email.Sender
}

// OverdueDigestResult carries the outcome of a digest send.
type OverdueDigestResult struct {
	PeopleListed int
	MessageID    string
}

var digestTemplate = template.Must(template.New("digest").Parse(`
<h2>Care visits overdue {{.Threshold}}+ days</h2>
<table border="1" cellpadding="4">
<tr><th>Person</th><th>Site</th><th>Last visit</th><th>Days overdue</th></tr>
{{range .People}}<tr><td>{{.Name}}</td><td>{{.Site}}</td><td>{{.LastDate}}</td><td>{{.OverdueDays}}</td></tr>
{{end}}</table>
`))

// ExecuteSendOverdueDigest emails a table of people whose most recent visit
// is older than the threshold. People with no parseable visit date are
// included: they have never been visited and are the most overdue of all.
// PRE: deps.Sender is non-nil
// POST: One email sent when anyone qualifies; no email for an empty digest
func ExecuteSendOverdueDigest(ctx context.Context, input OverdueDigestInput, deps OverdueDigestDeps) (OverdueDigestResult, error) {
	if input.Recipient == "" {
		return OverdueDigestResult{}, ErrNoRecipient
	}
	threshold := input.ThresholdDays
	if threshold <= 0 {
		threshold = DefaultOverdueThresholdDays
	}

	rows, err := projections.QueryGetSnapshot(ctx,
		projections.GetSnapshotQuery{Now: input.Now},
		projections.GetSnapshotDeps{EntryStore: deps.EntryStore},
	)
	if err != nil {
		return OverdueDigestResult{}, fmt.Errorf("snapshot: %w", err)
	}

	var overdue []projections.PersonSnapshot
	for _, r := range rows {
		if !r.HasVisit || r.OverdueDays >= threshold {
			overdue = append(overdue, r)
		}
	}

	if len(overdue) == 0 {
		slog.Info("digest_skipped", "reason", "nobody_overdue", "threshold_days", threshold)
		return OverdueDigestResult{}, nil
	}

	var body strings.Builder
	if err := digestTemplate.Execute(&body, map[string]any{
		"Threshold": threshold,
		"People":    overdue,
	}); err != nil {
		return OverdueDigestResult{}, fmt.Errorf("render digest: %w", err)
	}

	result, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{input.Recipient},
		From:    input.From,
		Subject: fmt.Sprintf("Care visit digest: %d people overdue", len(overdue)),
		HTML:    body.String(),
	})
	if err != nil {
		return OverdueDigestResult{}, fmt.Errorf("send digest: %w", err)
	}

	slog.Info("digest_sent", "people", len(overdue), "message_id", result.MessageID)
	return OverdueDigestResult{PeopleListed: len(overdue), MessageID: result.MessageID}, nil
}
