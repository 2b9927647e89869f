package dispatch

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tsstech/billingbot/internal/billing"
	"github.com/tsstech/billingbot/internal/workdrive"
)

func pdfItem(id, name string) workdrive.Item {
	return workdrive.Item{ID: id, Name: name, Type: "file"}
}

func newTestPipeline(t *testing.T, storage *mockStorage, extractor *mockExtractor, mailer *mockMailer) *Pipeline {
	t.Helper()
	return NewPipeline(PipelineConfig{
		Storage:   storage,
		Extractor: extractor,
		Mailer:    mailer,
	}, WithScratchRoot(t.TempDir()))
}

func invoiceJob(ids ...string) Job {
	return Job{
		Category:        billing.CategoryInvoice,
		SourceFolderID:  "src",
		ArchiveFolderID: "sent-root",
		CarrierIDs:      ids,
	}
}

func TestRunEmptyIdentifierList(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(t, &mockStorage{}, &mockExtractor{}, &mockMailer{})

	report := p.Run(context.Background(), invoiceJob(), sink)

	if len(report.Outcomes) != 0 {
		t.Errorf("empty run produced %d outcomes, want 0", len(report.Outcomes))
	}
	if report.MeanElapsed != 0 {
		t.Errorf("empty run MeanElapsed = %v, want 0", report.MeanElapsed)
	}
	if sink.report == nil {
		t.Error("sink did not receive the final report")
	}
	if len(sink.progress) != 0 {
		t.Errorf("empty run emitted %d progress events, want 0", len(sink.progress))
	}
}

func TestRunSingleSuccess(t *testing.T) {
	storage := &mockStorage{
		items:      []workdrive.Item{pdfItem("f1", "inv_1001_x.pdf")},
		subfolders: map[string]string{"Invoice": "sub-invoice"},
	}
	extractor := &mockExtractor{email: "a@b.com", ok: true}
	mailer := &mockMailer{}
	sink := &recordingSink{}

	p := newTestPipeline(t, storage, extractor, mailer)
	report := p.Run(context.Background(), invoiceJob("1001"), sink)

	if len(report.Outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(report.Outcomes))
	}
	o := report.Outcomes[0]
	if o.Kind != OutcomeSent || o.Recipient != "a@b.com" || o.CarrierID != "1001" {
		t.Errorf("outcome = %+v, want Sent to a@b.com for 1001", o)
	}
	if o.Elapsed <= 0 {
		t.Error("Sent outcome has no elapsed time")
	}

	// Exactly one send with the invoice template.
	tmpl, _ := billing.TemplateFor(billing.CategoryInvoice)
	if len(mailer.calls) != 1 || mailer.calls[0].To != "a@b.com" || mailer.calls[0].Subject != tmpl.Subject {
		t.Errorf("mailer calls = %+v, want one send to a@b.com with invoice subject", mailer.calls)
	}

	// Archival: upload into the per-category subfolder, then delete the original.
	if len(storage.uploadCalls) != 1 || storage.uploadCalls[0].FolderID != "sub-invoice" {
		t.Errorf("uploads = %+v, want one into sub-invoice", storage.uploadCalls)
	}
	if len(storage.deleteCalls) != 1 || storage.deleteCalls[0] != "f1" {
		t.Errorf("deletes = %v, want [f1]", storage.deleteCalls)
	}

	if !strings.Contains(report.Text(), "1001 → a@b.com") {
		t.Errorf("report text missing sent line:\n%s", report.Text())
	}
}

func TestRunNoFileFound(t *testing.T) {
	storage := &mockStorage{items: []workdrive.Item{pdfItem("f1", "inv_1001.pdf")}}
	mailer := &mockMailer{}
	sink := &recordingSink{}

	p := newTestPipeline(t, storage, &mockExtractor{}, mailer)
	report := p.Run(context.Background(), invoiceJob("2002"), sink)

	if report.Outcomes[0].Kind != OutcomeNoFileFound {
		t.Errorf("outcome = %v, want no_file_found", report.Outcomes[0].Kind)
	}
	if len(mailer.calls) != 0 {
		t.Error("mailer called for an identifier without a matching file")
	}
	if !strings.Contains(report.Text(), "2002 — No PDF Found") {
		t.Errorf("report text missing failure line:\n%s", report.Text())
	}
	if report.MeanElapsed != 0 {
		t.Errorf("MeanElapsed = %v, want 0 when no send was attempted", report.MeanElapsed)
	}
}

func TestRunDownloadFailed(t *testing.T) {
	storage := &mockStorage{
		items:       []workdrive.Item{pdfItem("f1", "inv_1001.pdf")},
		downloadErr: errors.New("boom"),
	}
	mailer := &mockMailer{}

	p := newTestPipeline(t, storage, &mockExtractor{email: "a@b.com", ok: true}, mailer)
	report := p.Run(context.Background(), invoiceJob("1001"), &recordingSink{})

	o := report.Outcomes[0]
	if o.Kind != OutcomeDownloadFailed || !strings.Contains(o.Reason, "boom") {
		t.Errorf("outcome = %+v, want download_failed with reason", o)
	}
	if len(mailer.calls) != 0 {
		t.Error("mailer called after a failed download")
	}
	if report.MeanElapsed != 0 {
		t.Errorf("MeanElapsed = %v, want 0: download failures carry no timing sample", report.MeanElapsed)
	}
	if !strings.Contains(report.Text(), "Download Failed: boom") {
		t.Errorf("report text missing download failure:\n%s", report.Text())
	}
}

func TestRunEmailMissing(t *testing.T) {
	scratchRoot := t.TempDir()
	storage := &mockStorage{items: []workdrive.Item{pdfItem("f1", "inv_3003.pdf")}}
	extractor := &mockExtractor{ok: false}
	mailer := &mockMailer{}

	p := NewPipeline(PipelineConfig{
		Storage:   storage,
		Extractor: extractor,
		Mailer:    mailer,
	}, WithScratchRoot(scratchRoot))

	report := p.Run(context.Background(), invoiceJob("3003"), &recordingSink{})

	if report.Outcomes[0].Kind != OutcomeEmailMissing {
		t.Errorf("outcome = %v, want email_missing", report.Outcomes[0].Kind)
	}
	if len(mailer.calls) != 0 {
		t.Error("mailer called without a recipient")
	}
	if len(storage.uploadCalls) != 0 {
		t.Error("archival attempted without a successful send")
	}
	if !strings.Contains(report.Text(), "3003 — Email Missing") {
		t.Errorf("report text missing failure line:\n%s", report.Text())
	}

	// The run's scratch directory is gone, including the downloaded copy.
	entries, err := os.ReadDir(scratchRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch root still contains %d entries after the run", len(entries))
	}
}

func TestRunSendFailed(t *testing.T) {
	storage := &mockStorage{items: []workdrive.Item{pdfItem("f1", "inv_1001.pdf")}}
	mailer := &mockMailer{sendErr: errors.New("connection refused")}

	p := newTestPipeline(t, storage, &mockExtractor{email: "a@b.com", ok: true}, mailer)
	report := p.Run(context.Background(), invoiceJob("1001"), &recordingSink{})

	o := report.Outcomes[0]
	if o.Kind != OutcomeSendFailed || !strings.Contains(o.Reason, "connection refused") {
		t.Errorf("outcome = %+v, want send_failed", o)
	}
	if len(storage.uploadCalls) != 0 || len(storage.deleteCalls) != 0 {
		t.Error("archival attempted after a failed send")
	}
	// A failed send still attempted delivery, so it contributes a timing sample.
	if report.MeanElapsed <= 0 {
		t.Errorf("MeanElapsed = %v, want > 0 after a send attempt", report.MeanElapsed)
	}
	if !strings.Contains(report.Text(), "1001 — ERR: connection refused") {
		t.Errorf("report text missing send failure:\n%s", report.Text())
	}
}

func TestRunArchivalFailureKeepsSent(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*mockStorage)
		uploads int
	}{
		{
			name:    "SubfolderLookupError",
			mutate:  func(s *mockStorage) { s.subfolderErr = errors.New("list failed") },
			uploads: 0,
		},
		{
			name:    "UploadError",
			mutate:  func(s *mockStorage) { s.uploadErr = errors.New("quota") },
			uploads: 1,
		},
		{
			name:    "DeleteError",
			mutate:  func(s *mockStorage) { s.deleteErr = errors.New("locked") },
			uploads: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &mockStorage{
				items:      []workdrive.Item{pdfItem("f1", "inv_1001.pdf")},
				subfolders: map[string]string{"Invoice": "sub-invoice"},
			}
			tt.mutate(storage)

			p := newTestPipeline(t, storage, &mockExtractor{email: "a@b.com", ok: true}, &mockMailer{})
			report := p.Run(context.Background(), invoiceJob("1001"), &recordingSink{})

			if report.Outcomes[0].Kind != OutcomeSent {
				t.Errorf("outcome = %v, want sent despite archival failure", report.Outcomes[0].Kind)
			}
			if len(storage.uploadCalls) != tt.uploads {
				t.Errorf("uploads = %d, want %d", len(storage.uploadCalls), tt.uploads)
			}
		})
	}
}

func TestRunArchiveSubfolderFallback(t *testing.T) {
	storage := &mockStorage{
		items:      []workdrive.Item{pdfItem("f1", "inv_1001.pdf")},
		subfolders: map[string]string{}, // no "Invoice" subfolder
	}

	p := newTestPipeline(t, storage, &mockExtractor{email: "a@b.com", ok: true}, &mockMailer{})
	p.Run(context.Background(), invoiceJob("1001"), &recordingSink{})

	if len(storage.uploadCalls) != 1 || storage.uploadCalls[0].FolderID != "sent-root" {
		t.Errorf("uploads = %+v, want fallback into the archive root", storage.uploadCalls)
	}
}

func TestRunListingFailure(t *testing.T) {
	storage := &mockStorage{listErr: errors.New("zoho down")}
	sink := &recordingSink{}

	p := newTestPipeline(t, storage, &mockExtractor{}, &mockMailer{})
	report := p.Run(context.Background(), invoiceJob("1001", "2002"), sink)

	if len(report.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(report.Outcomes))
	}
	for _, o := range report.Outcomes {
		if o.Kind != OutcomeNoFileFound {
			t.Errorf("outcome for %s = %v, want no_file_found after listing failure", o.CarrierID, o.Kind)
		}
	}
	if len(sink.scanned) != 1 || sink.scanned[0] != 0 {
		t.Errorf("sink.Scanned = %v, want [0]", sink.scanned)
	}
}

func TestRunOutcomeOrderMatchesInput(t *testing.T) {
	storage := &mockStorage{
		items: []workdrive.Item{
			pdfItem("f1", "inv_1001.pdf"),
			pdfItem("f3", "inv_3003.pdf"),
		},
	}

	p := newTestPipeline(t, storage, &mockExtractor{email: "a@b.com", ok: true}, &mockMailer{})
	report := p.Run(context.Background(), invoiceJob("3003", "2002", "1001"), &recordingSink{})

	want := []string{"3003", "2002", "1001"}
	if len(report.Outcomes) != len(want) {
		t.Fatalf("got %d outcomes, want %d", len(report.Outcomes), len(want))
	}
	for i, id := range want {
		if report.Outcomes[i].CarrierID != id {
			t.Errorf("outcome[%d].CarrierID = %q, want %q (input order)", i, report.Outcomes[i].CarrierID, id)
		}
	}
	if report.Outcomes[1].Kind != OutcomeNoFileFound {
		t.Errorf("outcome for 2002 = %v, want no_file_found", report.Outcomes[1].Kind)
	}
	if len(report.Sent()) != 2 || len(report.Failed()) != 1 {
		t.Errorf("sent/failed = %d/%d, want 2/1", len(report.Sent()), len(report.Failed()))
	}
}

func TestRunProgressEmittedBeforeEachItem(t *testing.T) {
	storage := &mockStorage{items: []workdrive.Item{pdfItem("f1", "inv_1001.pdf")}}
	sink := &recordingSink{}

	p := NewPipeline(PipelineConfig{
		Storage:   storage,
		Extractor: &mockExtractor{email: "a@b.com", ok: true},
		Mailer:    &mockMailer{},
	}, WithScratchRoot(t.TempDir()), WithDefaultItemETA(2*time.Second))

	p.Run(context.Background(), invoiceJob("1001", "2002", "3003"), sink)

	if len(sink.progress) != 3 {
		t.Fatalf("got %d progress events, want 3", len(sink.progress))
	}
	for i, pr := range sink.progress {
		if pr.Index != i+1 || pr.Total != 3 {
			t.Errorf("progress[%d] = %d/%d, want %d/3", i, pr.Index, pr.Total, i+1)
		}
	}
	if sink.progress[0].CarrierID != "1001" {
		t.Errorf("progress[0].CarrierID = %q, want 1001", sink.progress[0].CarrierID)
	}

	// Before any sample exists, the ETA uses the configured per-item default
	// for every identifier still pending, including the current one.
	if got, want := sink.progress[0].ETA, 3*2*time.Second; got != want {
		t.Errorf("progress[0].ETA = %v, want %v", got, want)
	}

	// 1001 sent; its real (fast) sample replaces the default for 2002's ETA.
	if sink.progress[1].ETA >= sink.progress[0].ETA {
		t.Errorf("progress[1].ETA = %v, want it based on the observed fast sample, below %v",
			sink.progress[1].ETA, sink.progress[0].ETA)
	}
}

func TestRunTakesFirstCandidateOnly(t *testing.T) {
	storage := &mockStorage{
		items: []workdrive.Item{
			pdfItem("f1", "inv_1001_jan.pdf"),
			pdfItem("f2", "inv_1001_feb.pdf"),
		},
	}

	p := newTestPipeline(t, storage, &mockExtractor{email: "a@b.com", ok: true}, &mockMailer{})
	p.Run(context.Background(), invoiceJob("1001"), &recordingSink{})

	// One send-path download for f1 plus one archival download; f2 untouched.
	for _, id := range storage.downloadCalls {
		if id == "f2" {
			t.Error("second candidate downloaded; only the first may participate")
		}
	}
}

func TestRunSharedFileSentOncePerIdentifier(t *testing.T) {
	storage := &mockStorage{
		items: []workdrive.Item{pdfItem("f1", "combined_1001_2002.pdf")},
	}
	mailer := &mockMailer{}

	p := newTestPipeline(t, storage, &mockExtractor{email: "a@b.com", ok: true}, mailer)
	report := p.Run(context.Background(), invoiceJob("1001", "2002"), &recordingSink{})

	if len(mailer.calls) != 2 {
		t.Errorf("sends = %d, want 2: a shared file goes once per identifier", len(mailer.calls))
	}
	if len(report.Sent()) != 2 {
		t.Errorf("sent outcomes = %d, want 2", len(report.Sent()))
	}
}
