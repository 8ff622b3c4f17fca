package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"family-archive/archive-api/internal/domain/photo"
)

// Formats that gain nothing from deflate.
var precompressedMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/heic",
	"image/avif",
	"video/mp4",
	"video/quicktime",
	"application/zip",
}

// Assembler builds a ZIP archive in memory, one photo per entry.
type Assembler struct {
	buf   bytes.Buffer
	zw    *zip.Writer
	names map[string]struct{}
	done  bool
}

// NewAssembler returns an empty archive builder.
func NewAssembler() *Assembler {
	a := &Assembler{names: make(map[string]struct{})}
	a.zw = zip.NewWriter(&a.buf)
	return a
}

// Add appends the photo's bytes under its filename and returns the entry name.
// A filename already present is stored as "<id>-<filename>".
func (a *Assembler) Add(p photo.Photo, data []byte) (string, error) {
	if a.done {
		return "", fmt.Errorf("archive already finished")
	}
	name := a.entryName(p)

	modified := p.CreatedAt
	if modified.IsZero() {
		modified = time.Now()
	}
	header := &zip.FileHeader{
		Name:     name,
		Method:   compressionFor(data),
		Modified: modified,
	}
	if p.Description != "" {
		header.Comment = p.Description
	}

	w, err := a.zw.CreateHeader(header)
	if err != nil {
		return name, err
	}
	if _, err := w.Write(data); err != nil {
		return name, err
	}
	a.names[name] = struct{}{}
	return name, nil
}

// Finish closes the archive and returns its bytes.
func (a *Assembler) Finish() ([]byte, error) {
	if a.done {
		return nil, fmt.Errorf("archive already finished")
	}
	a.done = true
	if err := a.zw.Close(); err != nil {
		return nil, err
	}
	return a.buf.Bytes(), nil
}

// Len returns the number of entries added so far.
func (a *Assembler) Len() int {
	return len(a.names)
}

func (a *Assembler) entryName(p photo.Photo) string {
	base := sanitizeName(p.Filename)
	if base == "" {
		base = fmt.Sprintf("%d", p.ID)
	}
	if _, taken := a.names[base]; !taken {
		return base
	}
	candidate := fmt.Sprintf("%d-%s", p.ID, base)
	for i := 2; ; i++ {
		if _, taken := a.names[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%d-%d-%s", p.ID, i, base)
	}
}

func sanitizeName(filename string) string {
	name := strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

func compressionFor(data []byte) uint16 {
	detected := mimetype.Detect(data)
	for _, m := range precompressedMIMEs {
		if detected.Is(m) {
			return zip.Store
		}
	}
	return zip.Deflate
}
