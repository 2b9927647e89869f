// Package dispatch drives one end-to-end billing run: match carrier
// identifiers to PDFs in the source folder, email each document to the
// address found inside it, archive what was sent, and report per-identifier
// outcomes. No collaborator failure aborts a run; every identifier always
// ends in exactly one recorded outcome.
package dispatch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tsstech/billingbot/internal/billing"
	"github.com/tsstech/billingbot/internal/match"
	"github.com/tsstech/billingbot/internal/workdrive"
)

// DefaultItemETA seeds the ETA estimate before any iteration has completed.
const DefaultItemETA = 3 * time.Second

// Storage is the slice of the WorkDrive client the pipeline needs.
type Storage interface {
	List(ctx context.Context, folderID string) ([]workdrive.Item, error)
	Download(ctx context.Context, fileID, localPath string) error
	Upload(ctx context.Context, folderID, localPath string) error
	Delete(ctx context.Context, fileID string) error
	SubfolderID(ctx context.Context, parentID, name string) (string, bool, error)
}

// EmailExtractor finds a recipient address inside a downloaded document.
type EmailExtractor interface {
	Email(path string) (email string, ok bool)
}

// MailSender delivers one message per call with its own transport session.
type MailSender interface {
	Send(to, subject, body, attachmentPath string) error
}

// Job describes one dispatch run.
type Job struct {
	Category billing.Category

	// SourceFolderID is the WorkDrive folder holding the category's PDFs.
	SourceFolderID string

	// ArchiveFolderID is the root archive folder; sent files move into its
	// per-category subfolder (or the root itself when the subfolder is missing).
	ArchiveFolderID string

	// CarrierIDs are processed strictly in this order.
	CarrierIDs []string
}

// Pipeline runs dispatch jobs. One Pipeline may serve concurrent
// conversations; each run gets its own scratch directory, so runs never
// share mutable state.
type Pipeline struct {
	storage   Storage
	extractor EmailExtractor
	mailer    MailSender
	logger    *slog.Logger

	scratchRoot string
	itemETA     time.Duration
}

// PipelineConfig holds the collaborators needed to construct a Pipeline.
type PipelineConfig struct {
	Storage   Storage
	Extractor EmailExtractor
	Mailer    MailSender
	Logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithScratchRoot places per-run scratch directories under dir instead of
// the system temp directory (for testing).
func WithScratchRoot(dir string) PipelineOption {
	return func(p *Pipeline) {
		p.scratchRoot = dir
	}
}

// WithDefaultItemETA overrides the pre-sample ETA seed (for testing).
func WithDefaultItemETA(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.itemETA = d
	}
}

// NewPipeline creates a dispatch pipeline.
func NewPipeline(cfg PipelineConfig, opts ...PipelineOption) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		storage:     cfg.Storage,
		extractor:   cfg.Extractor,
		mailer:      cfg.Mailer,
		logger:      logger,
		scratchRoot: os.TempDir(),
		itemETA:     DefaultItemETA,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run executes one dispatch job and always returns a complete report: one
// outcome per identifier, in input order. The run never fails as a whole;
// collaborator errors become per-identifier outcomes.
func (p *Pipeline) Run(ctx context.Context, job Job, sink Sink) *Report {
	start := time.Now()
	logger := p.logger.With("category", job.Category.String(), "run_id", uuid.NewString()[:8])

	report := &Report{Category: job.Category}
	tmpl, _ := billing.TemplateFor(job.Category)

	// A per-run scratch directory keeps concurrent conversations from
	// clobbering each other's copies of same-named files.
	scratchDir := filepath.Join(p.scratchRoot, "billingbot-run-"+uuid.NewString())
	if err := os.MkdirAll(scratchDir, 0700); err != nil {
		logger.Error("cannot create scratch directory, using temp root", "error", err)
		scratchDir = p.scratchRoot
	} else {
		defer func() {
			if err := os.RemoveAll(scratchDir); err != nil {
				logger.Warn("scratch cleanup failed", "dir", scratchDir, "error", err)
			}
		}()
	}

	items, err := p.storage.List(ctx, job.SourceFolderID)
	if err != nil {
		// Every identifier will resolve to NoFileFound.
		logger.Error("listing source folder failed", "folder_id", job.SourceFolderID, "error", err)
		items = nil
	}
	sink.Scanned(len(items))

	matches := match.Candidates(items, job.CarrierIDs)
	logger.Info("scan complete", "files", len(items), "carrier_ids", len(job.CarrierIDs))

	total := len(job.CarrierIDs)
	var samples []time.Duration

	for i, cid := range job.CarrierIDs {
		iterStart := time.Now()

		mean := p.itemETA
		if len(samples) > 0 {
			mean = meanDuration(samples)
		}
		remaining := total - i

		sink.Progress(Progress{
			Index:     i + 1,
			Total:     total,
			CarrierID: cid,
			Elapsed:   time.Since(start),
			ETA:       time.Duration(remaining) * mean,
		})
		logger.Info("dispatching", "carrier_id", cid, "index", i+1, "total", total)

		candidates := matches[cid]
		if len(candidates) == 0 {
			report.Outcomes = append(report.Outcomes, Outcome{CarrierID: cid, Kind: OutcomeNoFileFound})
			logger.Warn("no pdf found", "carrier_id", cid)
			continue
		}

		// Only the first candidate participates; extras stay in the folder
		// for a later run.
		item := candidates[0]
		scratch := filepath.Join(scratchDir, item.Name)

		if err := p.storage.Download(ctx, item.ID, scratch); err != nil {
			report.Outcomes = append(report.Outcomes, Outcome{
				CarrierID: cid,
				Kind:      OutcomeDownloadFailed,
				Reason:    err.Error(),
			})
			logger.Warn("download failed", "carrier_id", cid, "file", item.Name, "error", err)
			continue
		}

		email, ok := p.extractor.Email(scratch)
		if !ok {
			report.Outcomes = append(report.Outcomes, Outcome{CarrierID: cid, Kind: OutcomeEmailMissing})
			logger.Warn("email missing", "carrier_id", cid, "file", item.Name)
			removeIfExists(scratch)
			continue
		}

		sendErr := p.mailer.Send(email, tmpl.Subject, tmpl.Body, scratch)
		elapsed := time.Since(iterStart)
		samples = append(samples, elapsed)

		if sendErr != nil {
			report.Outcomes = append(report.Outcomes, Outcome{
				CarrierID: cid,
				Kind:      OutcomeSendFailed,
				Elapsed:   elapsed,
				Reason:    sendErr.Error(),
			})
			logger.Warn("send failed", "carrier_id", cid, "recipient", email, "error", sendErr)
		} else {
			report.Outcomes = append(report.Outcomes, Outcome{
				CarrierID: cid,
				Kind:      OutcomeSent,
				Recipient: email,
				Elapsed:   elapsed,
			})
			logger.Info("sent", "carrier_id", cid, "recipient", email, "elapsed", elapsed)
			p.archive(ctx, logger, item, job, scratchDir)
		}

		removeIfExists(scratch)
	}

	report.TotalElapsed = time.Since(start)
	if len(samples) > 0 {
		report.MeanElapsed = meanDuration(samples)
	}

	logger.Info("run complete",
		"total_elapsed", report.TotalElapsed,
		"sent", len(report.Sent()),
		"failed", len(report.Failed()),
	)
	sink.Report(report)

	return report
}

// archive moves a sent document into the category's archive subfolder.
// Best effort: any failure is logged and the document stays where it is;
// the Sent outcome is never downgraded.
func (p *Pipeline) archive(ctx context.Context, logger *slog.Logger, item workdrive.Item, job Job, scratchDir string) bool {
	label := job.Category.Label()

	destID, found, err := p.storage.SubfolderID(ctx, job.ArchiveFolderID, label)
	if err != nil {
		logger.Warn("archive subfolder lookup failed", "file", item.Name, "error", err)
		return false
	}
	if !found {
		logger.Warn("archive subfolder missing, using archive root", "subfolder", label)
		destID = job.ArchiveFolderID
	}

	// WorkDrive has no server-side move, so archival is download, upload,
	// delete-original. A failure part-way leaves the original in place; the
	// next successful run of the same file overwrites the archive copy.
	// The copy keeps the item's basename (Upload names the remote file
	// after the local one) but lives in its own subdirectory so it cannot
	// collide with the send scratch copy.
	if err := os.MkdirAll(filepath.Join(scratchDir, "archive"), 0700); err != nil {
		logger.Warn("archive scratch dir failed", "error", err)
		return false
	}
	scratch := filepath.Join(scratchDir, "archive", item.Name)
	defer removeIfExists(scratch)

	if err := p.storage.Download(ctx, item.ID, scratch); err != nil {
		logger.Warn("archive download failed", "file", item.Name, "error", err)
		return false
	}
	if err := p.storage.Upload(ctx, destID, scratch); err != nil {
		logger.Warn("archive upload failed", "file", item.Name, "error", err)
		return false
	}
	if err := p.storage.Delete(ctx, item.ID); err != nil {
		logger.Warn("archive delete of original failed", "file", item.Name, "error", err)
		return false
	}

	logger.Info("archived", "file", item.Name, "subfolder", label)
	return true
}

func removeIfExists(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}

func meanDuration(samples []time.Duration) time.Duration {
	var sum time.Duration
	for _, s := range samples {
		sum += s
	}
	return sum / time.Duration(len(samples))
}
