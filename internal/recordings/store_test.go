package recordings

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := NewStore(t.TempDir(), maxBytes, log)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	st.clock = func() time.Time { return time.Unix(1700000000, 0) }
	return st
}

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("recording", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/call/upload-recording", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 10); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}
	_, fh, err := req.FormFile("recording")
	if err != nil {
		t.Fatalf("FormFile: %v", err)
	}
	return fh
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	st := newTestStore(t, 0)

	saved, err := st.Save("call-1", uploadHeader(t, "session.webm", "webm-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(saved.Filename, "call-1_") || !strings.HasSuffix(saved.Filename, ".webm") {
		t.Fatalf("unexpected stored name %q", saved.Filename)
	}
	if saved.Size != int64(len("webm-bytes")) || saved.ContentType != "video/webm" {
		t.Fatalf("unexpected saved meta %+v", saved)
	}

	f, info, contentType, err := st.Open(saved.Filename)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	if info.Size() != saved.Size || contentType != "video/webm" {
		t.Fatalf("unexpected open meta size=%d type=%s", info.Size(), contentType)
	}
	data, err := io.ReadAll(f)
	if err != nil || string(data) != "webm-bytes" {
		t.Fatalf("content mismatch: %q err=%v", data, err)
	}
}

func TestSaveRejectsBadUploads(t *testing.T) {
	st := newTestStore(t, 4)

	if _, err := st.Save("c", uploadHeader(t, "notes.txt", "hi")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := st.Save("c", uploadHeader(t, "big.mp4", "way too large")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := st.Save("c", uploadHeader(t, "empty.mp4", "")); !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("expected ErrEmptyUpload, got %v", err)
	}
}

func TestSaveStripsPathFromClientName(t *testing.T) {
	st := newTestStore(t, 0)
	saved, err := st.Save("c", uploadHeader(t, "../../etc/evil.mp4", "x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.Contains(saved.Filename, "/") || strings.Contains(saved.Filename, "..") {
		t.Fatalf("stored name leaks path: %q", saved.Filename)
	}
}

func TestOpenRejectsTraversalAndUnknown(t *testing.T) {
	st := newTestStore(t, 0)

	for _, name := range []string{"../secret.mp4", "a/b.mp4", "", ".", "missing.webm", "noext"} {
		if _, _, _, err := st.Open(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Open(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestRemove(t *testing.T) {
	st := newTestStore(t, 0)
	saved, err := st.Save("c", uploadHeader(t, "a.webm", "x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Remove(saved.Filename); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := st.Remove(saved.Filename); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}
