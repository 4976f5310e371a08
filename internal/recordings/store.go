package recordings

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("recording not found")
	ErrTooLarge        = errors.New("recording exceeds upload size limit")
	ErrUnsupportedType = errors.New("unsupported recording format")
	ErrEmptyUpload     = errors.New("empty recording upload")
)

// allowedExtensions maps the recording container formats the store accepts to
// the content type used when serving them back.
var allowedExtensions = map[string]string{
	".webm": "video/webm",
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
}

// Store keeps uploaded call recordings on local disk under a single
// directory. Filenames are generated server-side; client-supplied names only
// contribute their extension.
type Store struct {
	dir      string
	maxBytes int64
	log      *slog.Logger
	clock    func() time.Time
}

func NewStore(dir string, maxBytes int64, log *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("recordings dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create recordings dir: %w", err)
	}
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		log:      log,
		clock:    time.Now,
	}, nil
}

// Saved describes a stored recording.
type Saved struct {
	Filename    string
	Size        int64
	ContentType string
}

// Save validates and persists one uploaded recording for a call. The stored
// filename is <callID>_<nanos><ext> so repeated uploads never collide.
func (s *Store) Save(callID string, fh *multipart.FileHeader) (Saved, error) {
	if fh.Size == 0 {
		return Saved{}, ErrEmptyUpload
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return Saved{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, fh.Size)
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(fh.Filename)))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return Saved{}, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	src, err := fh.Open()
	if err != nil {
		return Saved{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s_%d%s", sanitizeComponent(callID), s.clock().UnixNano(), ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return Saved{}, fmt.Errorf("create recording file: %w", err)
	}
	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return Saved{}, fmt.Errorf("write recording file: %w", err)
	}

	s.log.Info("recording stored", "call_id", callID, "filename", name, "bytes", written)
	return Saved{Filename: name, Size: written, ContentType: contentType}, nil
}

// Open resolves a stored recording by filename for streaming. The name is
// reduced to its base component so a crafted path can never escape the
// recordings directory.
func (s *Store) Open(filename string) (*os.File, os.FileInfo, string, error) {
	name := sanitizeComponent(filename)
	if name == "" || name != filename {
		return nil, nil, "", ErrNotFound
	}
	contentType, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, nil, "", ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, "", ErrNotFound
		}
		return nil, nil, "", fmt.Errorf("open recording: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, "", fmt.Errorf("stat recording: %w", err)
	}
	return f, info, contentType, nil
}

// Remove deletes a stored recording. Missing files are reported as ErrNotFound.
func (s *Store) Remove(filename string) error {
	name := sanitizeComponent(filename)
	if name == "" || name != filename {
		return ErrNotFound
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove recording: %w", err)
	}
	return nil
}

// sanitizeComponent strips path separators so the value is usable as a single
// filename component.
func sanitizeComponent(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "." || name == ".." {
		return ""
	}
	return name
}
