package hierarchy

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/uidiff/internal/model"
)

// Directory names of the on-disk capture layout.
const (
	XMLDir        = "xmls"
	ScreenshotDir = "screenshots"
)

// ErrNoScreenshot is returned by a Capturer that has no screenshot.
var ErrNoScreenshot = errors.New("no screenshot available")

// Capturer obtains a snapshot of the current screen. Implementations talk
// to a device or read previously stored captures.
type Capturer interface {
	// DumpHierarchy returns the raw uiautomator XML of the screen.
	DumpHierarchy(ctx context.Context) ([]byte, error)

	// Screenshot returns PNG bytes, or ErrNoScreenshot.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Capture is one snapshot of a screen.
type Capture struct {
	Label      string
	XML        []byte
	Screenshot []byte
	CapturedAt time.Time
}

// Take captures the current screen under label. A missing screenshot is not an error.
func Take(ctx context.Context, c Capturer, label string) (*Capture, error) {
	raw, err := c.DumpHierarchy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dump hierarchy for %s: %w", label, err)
	}
	shot, err := c.Screenshot(ctx)
	if err != nil && !errors.Is(err, ErrNoScreenshot) {
		return nil, fmt.Errorf("failed to take screenshot for %s: %w", label, err)
	}
	return &Capture{Label: label, XML: raw, Screenshot: shot, CapturedAt: time.Now()}, nil
}

// Tree parses the captured hierarchy.
func (c *Capture) Tree() (*model.Node, error) {
	return Parse(c.XML)
}

// Fingerprint returns the fingerprint of the captured XML.
func (c *Capture) Fingerprint() string {
	return Fingerprint(c.XML)
}

// ScreenshotFingerprint returns the fingerprint of the screenshot, or ""
// when the capture has none.
func (c *Capture) ScreenshotFingerprint() string {
	if len(c.Screenshot) == 0 {
		return ""
	}
	return Fingerprint(c.Screenshot)
}

// Save writes the capture into dir using the xmls/ and screenshots/ layout.
func (c *Capture) Save(dir string) error {
	xmlPath := filepath.Join(dir, XMLDir, c.Label+".xml")
	if err := writeFile(xmlPath, c.XML); err != nil {
		return err
	}
	if len(c.Screenshot) == 0 {
		return nil
	}
	return writeFile(filepath.Join(dir, ScreenshotDir, c.Label+".png"), c.Screenshot)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DirCapturer replays a capture stored in Dir under Label.
type DirCapturer struct {
	Dir   string
	Label string
}

// DumpHierarchy implements Capturer.
func (d DirCapturer) DumpHierarchy(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(d.Dir, XMLDir, d.Label+".xml")
	raw, err := os.ReadFile(path) //nolint:gosec // path is built from user supplied directory
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

// Screenshot implements Capturer.
func (d DirCapturer) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(d.Dir, ScreenshotDir, d.Label+".png")
	raw, err := os.ReadFile(path) //nolint:gosec // path is built from user supplied directory
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoScreenshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

// FileCapturer reads a capture from a single XML file. It has no screenshot.
type FileCapturer struct {
	Path string
}

// DumpHierarchy implements Capturer.
func (f FileCapturer) DumpHierarchy(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return raw, nil
}

// Screenshot implements Capturer.
func (FileCapturer) Screenshot(context.Context) ([]byte, error) {
	return nil, ErrNoScreenshot
}

// CapturerFor returns the capturer reading the capture at path. A path of
// the form <dir>/xmls/<label>.xml is read through a DirCapturer so the
// screenshot stored next to it is picked up too.
func CapturerFor(path string) Capturer {
	dir := filepath.Dir(path)
	if filepath.Base(dir) == XMLDir && filepath.Ext(path) == ".xml" {
		return DirCapturer{Dir: filepath.Dir(dir), Label: LabelFromPath(path)}
	}
	return FileCapturer{Path: path}
}

// Fingerprint returns the hex encoded SHA3-256 digest of data.
func Fingerprint(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// LabelFromPath derives a capture label from a file path by dropping the
// directory and extension, e.g. "xmls/login.xml" becomes "login".
func LabelFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
