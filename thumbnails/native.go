package thumbnails

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/ShoshinNikita/screenshelf/pkg/rlog"
	"github.com/ShoshinNikita/screenshelf/screenshelf"
)

// CommandRunner defines the interface for running external commands.
// It allows mocking exec.Command in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecCommandRunner is the production implementation using os/exec.
type ExecCommandRunner struct{}

func (ExecCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	stderr := bytes.NewBuffer(nil)
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w, stderr: %q", err, stderr.String())
	}
	if stderr.Len() > 0 {
		rlog.Debugf("%s stderr: %q", name, stderr.String())
	}
	return nil
}

// ResolveThumbnailerKind replaces [screenshelf.ThumbnailerAuto] with the thumbnailer of the
// current platform.
func ResolveThumbnailerKind(kind screenshelf.ThumbnailerKind) screenshelf.ThumbnailerKind {
	if kind != screenshelf.ThumbnailerAuto {
		return kind
	}
	if runtime.GOOS == "darwin" {
		return screenshelf.ThumbnailerQuickLook
	}
	return screenshelf.ThumbnailerFFmpegThumbnailer
}

// CheckDeps checks that the command of the thumbnailer is installed.
func CheckDeps(kind screenshelf.ThumbnailerKind) error {
	name, ok := thumbnailerCommands[ResolveThumbnailerKind(kind)]
	if !ok {
		return nil
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s is not installed: %w", name, err)
	}
	return nil
}

var thumbnailerCommands = map[screenshelf.ThumbnailerKind]string{
	screenshelf.ThumbnailerFFmpegThumbnailer: "ffmpegthumbnailer",
	screenshelf.ThumbnailerQuickLook:         "qlmanage",
}

// CommandThumbnailer requests thumbnails from a platform tool. The tool writes a PNG file
// to a temp directory, and the file is decoded.
type CommandThumbnailer struct {
	kind    screenshelf.ThumbnailerKind
	runner  CommandRunner
	tempDir string
}

var _ screenshelf.NativeThumbnailer = (*CommandThumbnailer)(nil)

// CommandThumbnailerOption is a functional option for configuring CommandThumbnailer.
type CommandThumbnailerOption func(*CommandThumbnailer)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner CommandRunner) CommandThumbnailerOption {
	return func(t *CommandThumbnailer) {
		t.runner = runner
	}
}

// WithTempDir sets a directory for temp files. The default is [os.TempDir].
func WithTempDir(dir string) CommandThumbnailerOption {
	return func(t *CommandThumbnailer) {
		t.tempDir = dir
	}
}

func NewCommandThumbnailer(kind screenshelf.ThumbnailerKind, opts ...CommandThumbnailerOption) *CommandThumbnailer {
	t := &CommandThumbnailer{
		kind:   ResolveThumbnailerKind(kind),
		runner: ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *CommandThumbnailer) Generate(ctx context.Context, path string, width, height int) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("couldn't stat source file: %w", err)
	}

	outputDir, err := os.MkdirTemp(t.tempDir, "screenshelf-thumbnail-*")
	if err != nil {
		return nil, fmt.Errorf("couldn't create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(outputDir); err != nil {
			rlog.Errorf("couldn't remove temp dir %q: %s", outputDir, err)
		}
	}()

	size := strconv.Itoa(max(width, height))

	var (
		name   string
		args   []string
		output string
	)
	switch t.kind {
	case screenshelf.ThumbnailerFFmpegThumbnailer:
		name = "ffmpegthumbnailer"
		output = filepath.Join(outputDir, "thumbnail.png")
		args = []string{"-i", path, "-o", output, "-s", size, "-c", "png", "-t", "10%"}

	case screenshelf.ThumbnailerQuickLook:
		// qlmanage saves thumbnails as '<output dir>/<filename>.png'.
		name = "qlmanage"
		output = filepath.Join(outputDir, filepath.Base(path)+".png")
		args = []string{"-t", "-s", size, "-o", outputDir, path}

	default:
		return nil, fmt.Errorf("%w: no command for thumbnailer %q", screenshelf.ErrUnsupportedFormat, t.kind)
	}

	if err := t.runner.Run(ctx, name, args...); err != nil {
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	f, err := os.Open(output)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Some tools exit successfully even if they can't handle the file.
			return nil, fmt.Errorf("%w: %s produced no thumbnail", screenshelf.ErrUnsupportedFormat, name)
		}
		return nil, fmt.Errorf("couldn't open thumbnail: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode thumbnail: %w", err)
	}
	return img, nil
}
