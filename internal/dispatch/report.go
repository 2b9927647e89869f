package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/tsstech/billingbot/internal/billing"
)

// Report is the final result of one dispatch run: exactly one outcome per
// input carrier identifier, in input order, plus aggregate timing.
type Report struct {
	Category billing.Category
	Outcomes []Outcome

	// TotalElapsed is the wall time of the whole run.
	TotalElapsed time.Duration

	// MeanElapsed is the arithmetic mean over iterations that attempted a
	// send; zero when none did.
	MeanElapsed time.Duration
}

// Sent returns the successful outcomes in run order.
func (r *Report) Sent() []Outcome {
	var sent []Outcome
	for _, o := range r.Outcomes {
		if o.Success() {
			sent = append(sent, o)
		}
	}
	return sent
}

// Failed returns the non-successful outcomes in run order.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Success() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Text renders the chat-facing summary block.
func (r *Report) Text() string {
	sent := r.Sent()
	failed := r.Failed()

	lines := []string{
		fmt.Sprintf("%s — Summary Report", strings.ToUpper(r.Category.String())),
		fmt.Sprintf("Total time: %.1fs (avg %.1fs/email)", r.TotalElapsed.Seconds(), r.MeanElapsed.Seconds()),
		"",
		fmt.Sprintf("✅ Sent: %d", len(sent)),
	}

	if len(sent) == 0 {
		lines = append(lines, "—")
	}
	for _, o := range sent {
		lines = append(lines, o.SentLine())
	}

	lines = append(lines, "", fmt.Sprintf("❌ Failed: %d", len(failed)))

	if len(failed) == 0 {
		lines = append(lines, "—")
	}
	for _, o := range failed {
		lines = append(lines, o.FailureLine())
	}

	return strings.Join(lines, "\n")
}
