package screenshelf

import (
	"encoding"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ShoshinNikita/screenshelf/pkg/misc"
	"github.com/ShoshinNikita/screenshelf/pkg/rlog"
)

type Config struct {
	BuildInfo BuildInfo

	ServerPort int
	Dir        string
	VideosDir  string

	Thumbnailer               ThumbnailerKind
	ThumbnailsPlaceholderExts ExtList
	ThumbnailsGenerateTimeout time.Duration
	ThumbnailsCacheSize       MiB
	ThumbnailsCacheMaxAge     time.Duration

	// Debug options

	LogLevel rlog.Level
}

type BuildInfo struct {
	ShortGitHash string
	CommitTime   string
}

// ThumbnailsDir returns the directory of the thumbnail cache.
func (cfg Config) ThumbnailsDir() string {
	return filepath.Join(cfg.Dir, "thumbnails")
}

// SettingsFile returns the path of the file with user settings.
func (cfg Config) SettingsFile() string {
	return filepath.Join(cfg.Dir, "settings.yaml")
}

type ThumbnailerKind string

const (
	// ThumbnailerAuto selects the platform thumbnailer based on the OS.
	ThumbnailerAuto              ThumbnailerKind = "auto"
	ThumbnailerFFmpegThumbnailer ThumbnailerKind = "ffmpegthumbnailer"
	ThumbnailerQuickLook         ThumbnailerKind = "qlmanage"
	// ThumbnailerNone disables native thumbnails, only placeholders are returned.
	ThumbnailerNone ThumbnailerKind = "none"
)

func (k ThumbnailerKind) MarshalText() (text []byte, err error) {
	return []byte(k), nil
}

func (k *ThumbnailerKind) UnmarshalText(text []byte) error {
	*k = ThumbnailerKind(text)

	return checkEnum(*k, ThumbnailerAuto, ThumbnailerFFmpegThumbnailer, ThumbnailerQuickLook, ThumbnailerNone)
}

func checkEnum[T comparable](v T, validValues ...T) error {
	if !slices.Contains(validValues, v) {
		return fmt.Errorf("valid values: %v", validValues)
	}
	return nil
}

// ExtList is a list of lowercase file extensions with leading dots.
type ExtList []string

func (l ExtList) Contains(ext string) bool {
	return slices.Contains(l, strings.ToLower(ext))
}

func (l ExtList) MarshalText() (text []byte, err error) {
	return []byte(strings.Join(l, ",")), nil
}

func (l *ExtList) UnmarshalText(text []byte) error {
	res := ExtList{}
	for ext := range strings.SplitSeq(string(text), ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if strings.ContainsAny(ext, `/\ `) {
			return fmt.Errorf("invalid extension %q", ext)
		}
		res = append(res, misc.EnsurePrefix(ext, "."))
	}
	*l = res
	return nil
}

func (l ExtList) String() string {
	text, _ := l.MarshalText()
	return string(text)
}

type MiB int

func (mb MiB) Bytes() int64 {
	return int64(mb) << 20
}

func (mb MiB) MarshalText() (text []byte, err error) {
	if mb >= 1024 && mb%1024 == 0 {
		return []byte(strconv.Itoa(int(mb/1024)) + "Gi"), nil
	}
	return []byte(strconv.Itoa(int(mb)) + "Mi"), nil
}

func (mb *MiB) UnmarshalText(data []byte) error {
	text := string(data)

	mul := 1
	switch {
	case strings.HasSuffix(text, "Mi"):
	case strings.HasSuffix(text, "Gi"):
		mul = 1024
	default:
		return fmt.Errorf("valid suffixes: Mi, Gi")
	}
	n, err := strconv.Atoi(text[:len(text)-2])
	if err != nil {
		return fmt.Errorf("invalid size: %w", err)
	}
	if n < 0 {
		return errors.New("size can't be negative")
	}

	*mb = MiB(n * mul)
	return nil
}

func (mb MiB) String() string {
	text, _ := mb.MarshalText()
	return string(text)
}

type flagParams struct {
	// p is a pointer to a value.
	p            any
	defaultValue any
	desc         string
}

func (cfg *Config) getFlagParams() map[string]flagParams {
	return map[string]flagParams{
		"port": {
			p: &cfg.ServerPort, defaultValue: 8080, desc: "Server port",
		},
		"dir": {
			p: &cfg.Dir, defaultValue: defaultAppDir(), desc: "Directory for app data (thumbnails, settings and etc.)",
		},
		"videos-dir": {
			p: &cfg.VideosDir, defaultValue: defaultVideosDir(), desc: "" +
				"Directory with recordings. It is used by the videos API when\n" +
				"no directory is passed",
		},
		//
		"thumbnailer": {
			p: &cfg.Thumbnailer, defaultValue: ThumbnailerAuto, desc: "" +
				"Available platform thumbnailers:\n" +
				"  - auto: qlmanage on macOS, ffmpegthumbnailer on other systems\n" +
				"  - ffmpegthumbnailer: use ffmpegthumbnailer command\n" +
				"  - qlmanage: use Quick Look (macOS only)\n" +
				"  - none: don't generate thumbnails, show placeholders\n",
		},
		"thumbnails-placeholder-exts": {
			p: &cfg.ThumbnailsPlaceholderExts, defaultValue: ExtList{".webm"}, desc: "" +
				"Comma-separated extensions of files without native thumbnail support.\n" +
				"Placeholders are returned for them when the thumbnailer fails",
		},
		"thumbnails-generate-timeout": {
			p: &cfg.ThumbnailsGenerateTimeout, defaultValue: 30 * time.Second, desc: "Max duration of a single thumbnail generation",
		},
		"thumbnails-cache-size": {
			p: &cfg.ThumbnailsCacheSize, defaultValue: MiB(0), desc: "Max total size of cached thumbnails, 0 means unlimited",
		},
		"thumbnails-cache-max-age": {
			p: &cfg.ThumbnailsCacheMaxAge, defaultValue: time.Duration(0), desc: "Max age of cached thumbnails, 0 means unlimited",
		},
		//
		"log-level": {
			p: &cfg.LogLevel, defaultValue: rlog.LevelInfo, desc: "Set the minimal log level. One of: debug, info, warn, error",
		},
	}
}

func defaultAppDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./var"
	}
	return filepath.Join(dir, "screenshelf")
}

func defaultVideosDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Videos")
}

func ParseConfig() (Config, error) {
	return parseConfig(flag.CommandLine, os.Args[1:])
}

func parseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		BuildInfo: readBuildInfo(),
	}

	var printVersion bool
	fs.BoolVar(&printVersion, "version", false, "Print version and exit")

	flags := cfg.getFlagParams()
	for name, params := range flags {
		switch p := params.p.(type) {
		case *bool:
			fs.BoolVar(p, name, params.defaultValue.(bool), params.desc)
		case *int:
			fs.IntVar(p, name, params.defaultValue.(int), params.desc)
		case *string:
			fs.StringVar(p, name, params.defaultValue.(string), params.desc)
		case *time.Duration:
			fs.DurationVar(p, name, params.defaultValue.(time.Duration), params.desc)
		case encoding.TextUnmarshaler:
			fs.TextVar(p, name, params.defaultValue.(encoding.TextMarshaler), params.desc)
		default:
			return Config{}, fmt.Errorf("flag %q has unsupported type: %T", name, p)
		}
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if printVersion {
		cfg.BuildInfo.Print()
		os.Exit(0)
	}

	if cfg.ServerPort <= 0 {
		return cfg, errors.New("server port must be > 0")
	}
	if cfg.Dir == "" {
		return cfg, errors.New("dir can't be empty")
	}
	if cfg.ThumbnailsGenerateTimeout <= 0 {
		return cfg, errors.New("thumbnails generate timeout must be > 0")
	}
	if cfg.ThumbnailsCacheMaxAge < 0 {
		return cfg, errors.New("thumbnails cache max age can't be negative")
	}

	return cfg, nil
}

func readBuildInfo() BuildInfo {
	res := BuildInfo{
		ShortGitHash: "unknown",
		CommitTime:   "unknown",
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return res
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			res.ShortGitHash = s.Value
			if len(res.ShortGitHash) > 7 {
				res.ShortGitHash = res.ShortGitHash[:7]
			}

		case "vcs.time":
			t, err := time.Parse(time.RFC3339, s.Value)
			if err == nil {
				res.CommitTime = t.UTC().Format("2006-01-02 15:04:05 UTC")
			}
		}
	}
	return res
}

func (info BuildInfo) Print() {
	fmt.Fprintf(os.Stderr, `
     ___  ___ _ __ ___  ___ _ __  ___| |__   ___| |/ _|
    / __|/ __| '__/ _ \/ _ \ '_ \/ __| '_ \ / _ \ | |_
    \__ \ (__| | |  __/  __/ | | \__ \ | | |  __/ |  _|
    |___/\___|_|  \___|\___|_| |_|___/_| |_|\___|_|_|

    Commit Hash: %q
    Commit Time: %q

`,
		info.ShortGitHash,
		info.CommitTime,
	)
}

func (cfg Config) Print() {
	flags := cfg.getFlagParams()

	var (
		names         = make([]string, 0, len(flags))
		maxNameLength int
	)
	for name := range flags {
		if len(name) > maxNameLength {
			maxNameLength = len(name)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprint(os.Stderr, "    Config:\n\n")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "        --%-*s = %v\n", maxNameLength, name, reflect.ValueOf(flags[name].p).Elem())
	}
	fmt.Fprint(os.Stderr, "\n")
}
