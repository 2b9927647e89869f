package dispatch

import (
	"context"
	"os"
	"sync"

	"github.com/tsstech/billingbot/internal/workdrive"
)

// mockStorage is an in-memory Storage with scriptable failures.
type mockStorage struct {
	mu sync.Mutex

	items   []workdrive.Item
	listErr error

	downloadErr   error
	downloadCalls []string // file IDs in call order

	uploadErr   error
	uploadCalls []struct{ FolderID, LocalPath string }

	deleteErr   error
	deleteCalls []string

	subfolders   map[string]string // name -> id under the archive root
	subfolderErr error
}

func (m *mockStorage) List(ctx context.Context, folderID string) ([]workdrive.Item, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.items, nil
}

func (m *mockStorage) Download(ctx context.Context, fileID, localPath string) error {
	m.mu.Lock()
	m.downloadCalls = append(m.downloadCalls, fileID)
	m.mu.Unlock()

	if m.downloadErr != nil {
		return m.downloadErr
	}
	return os.WriteFile(localPath, []byte("%PDF-1.4 mock"), 0644)
}

func (m *mockStorage) Upload(ctx context.Context, folderID, localPath string) error {
	m.mu.Lock()
	m.uploadCalls = append(m.uploadCalls, struct{ FolderID, LocalPath string }{folderID, localPath})
	m.mu.Unlock()
	return m.uploadErr
}

func (m *mockStorage) Delete(ctx context.Context, fileID string) error {
	m.mu.Lock()
	m.deleteCalls = append(m.deleteCalls, fileID)
	m.mu.Unlock()
	return m.deleteErr
}

func (m *mockStorage) SubfolderID(ctx context.Context, parentID, name string) (string, bool, error) {
	if m.subfolderErr != nil {
		return "", false, m.subfolderErr
	}
	id, ok := m.subfolders[name]
	return id, ok, nil
}

// mockExtractor returns a fixed extraction result and records the paths it saw.
type mockExtractor struct {
	email string
	ok    bool
	paths []string
}

func (m *mockExtractor) Email(path string) (string, bool) {
	m.paths = append(m.paths, path)
	return m.email, m.ok
}

// mockMailer records sends and fails when sendErr is set.
type mockMailer struct {
	sendErr error
	calls   []struct{ To, Subject, Attachment string }
}

func (m *mockMailer) Send(to, subject, body, attachmentPath string) error {
	m.calls = append(m.calls, struct{ To, Subject, Attachment string }{to, subject, attachmentPath})
	return m.sendErr
}

// recordingSink captures every notification for assertions.
type recordingSink struct {
	scanned  []int
	progress []Progress
	report   *Report
}

func (s *recordingSink) Scanned(items int)    { s.scanned = append(s.scanned, items) }
func (s *recordingSink) Progress(p Progress)  { s.progress = append(s.progress, p) }
func (s *recordingSink) Report(r *Report)     { s.report = r }
