package sfx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// supportedExts in path-convention search order
var supportedExts = []string{".wav", ".mp3", ".ogg", ".flac"}

// asset is one loaded sound: a decoded buffer plus playback policy and stats
type asset struct {
	name      string
	buffer    *beep.Buffer
	config    SoundConfig
	playCount int
	lastPlay  time.Time
}

// resolvePath finds a sound file by the Dir/<name>.<ext> convention
func resolvePath(dir, name string) (string, error) {
	for _, ext := range supportedExts {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNotFound, name, dir)
}

// decodeFile decodes a sound file into a buffer at the target format,
// resampling when the source rate differs
func decodeFile(path string, format beep.Format) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		src      beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, src, err = wav.Decode(f)
	case ".mp3":
		streamer, src, err = mp3.Decode(f)
	case ".ogg":
		streamer, src, err = vorbis.Decode(f)
	case ".flac":
		streamer, src, err = flac.Decode(f)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrDecode, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if src.SampleRate != format.SampleRate {
		s = beep.Resample(4, src.SampleRate, format.SampleRate, streamer)
	}

	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return buf, nil
}

// listDir returns the supported sound files in dir, file path keyed by name
func listDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	found := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		supported := false
		for _, se := range supportedExts {
			if ext == se {
				supported = true
				break
			}
		}
		if !supported {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, dup := found[name]; !dup {
			found[name] = filepath.Join(dir, e.Name())
		}
	}
	return found, nil
}
