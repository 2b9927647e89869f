package dispatch

import (
	"fmt"
	"time"
)

// OutcomeKind classifies how one carrier identifier's dispatch ended.
type OutcomeKind string

const (
	// OutcomeSent means the document was emailed to the extracted recipient.
	OutcomeSent OutcomeKind = "sent"

	// OutcomeNoFileFound means no PDF in the source folder matched the identifier.
	OutcomeNoFileFound OutcomeKind = "no_file_found"

	// OutcomeDownloadFailed means the matched PDF could not be fetched.
	OutcomeDownloadFailed OutcomeKind = "download_failed"

	// OutcomeEmailMissing means the PDF contained no usable recipient address.
	OutcomeEmailMissing OutcomeKind = "email_missing"

	// OutcomeSendFailed means the SMTP delivery failed.
	OutcomeSendFailed OutcomeKind = "send_failed"
)

// Outcome is the terminal result for one carrier identifier. Once recorded
// it is never revisited; a later archival failure does not change it.
type Outcome struct {
	CarrierID string
	Kind      OutcomeKind

	// Recipient is set for OutcomeSent.
	Recipient string

	// Elapsed is the iteration's wall time, set when a send was attempted
	// (OutcomeSent and OutcomeSendFailed).
	Elapsed time.Duration

	// Reason carries the failure detail for OutcomeDownloadFailed and
	// OutcomeSendFailed.
	Reason string
}

// Success reports whether the document was delivered.
func (o Outcome) Success() bool {
	return o.Kind == OutcomeSent
}

// SentLine renders the outcome for the report's Sent section.
func (o Outcome) SentLine() string {
	return fmt.Sprintf("%s → %s (%.1fs)", o.CarrierID, o.Recipient, o.Elapsed.Seconds())
}

// FailureLine renders the outcome for the report's Failed section.
func (o Outcome) FailureLine() string {
	return fmt.Sprintf("%s — %s", o.CarrierID, o.failureReason())
}

func (o Outcome) failureReason() string {
	switch o.Kind {
	case OutcomeNoFileFound:
		return "No PDF Found"
	case OutcomeDownloadFailed:
		return "Download Failed: " + o.Reason
	case OutcomeEmailMissing:
		return "Email Missing"
	case OutcomeSendFailed:
		return "ERR: " + o.Reason
	}
	return string(o.Kind)
}
