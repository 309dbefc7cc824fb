// Package video inspects screencast video files with ffprobe and
// classifies codec and container against the permitted formats.
package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/appstream-tools/compose/pkg/appstream"
)

// Info describes a probed video file.
type Info struct {
	CodecName      string
	AudioCodecName string
	FormatName     string
	Width          int
	Height         int

	Codec     appstream.VideoCodec
	Container appstream.VideoContainer
}

// HasAudio reports whether the video carries an audio track.
func (i *Info) HasAudio() bool { return i.AudioCodecName != "" }

// AudioAcceptable reports whether the audio track, if any, uses the only
// permitted audio codec (Opus).
func (i *Info) AudioAcceptable() bool {
	return i.AudioCodecName == "" || i.AudioCodecName == "opus"
}

// Acceptable reports whether the video may be published: a recognized
// container, a permitted codec and acceptable audio. Files can contain
// multiple streams, so this is a best-effort check against the common
// misencodings.
func (i *Info) Acceptable() bool {
	return i.Container != appstream.VideoContainerUnknown &&
		i.Codec != appstream.VideoCodecUnknown &&
		i.AudioAcceptable()
}

var (
	probeOnce sync.Once
	probePath string
)

// SetProbeBinary overrides the detected ffprobe binary. An empty path
// disables video checks.
func SetProbeBinary(path string) {
	probeOnce.Do(func() {})
	probePath = path
}

// Available reports whether ffprobe was found.
func Available() bool {
	detectProbe()
	return probePath != ""
}

func detectProbe() {
	probeOnce.Do(func() {
		if p, err := exec.LookPath("ffprobe"); err == nil {
			probePath = p
		}
	})
}

// ProbeFile runs ffprobe on a video file and parses the result.
func ProbeFile(ctx context.Context, fname string) (*Info, error) {
	detectProbe()
	if probePath == "" {
		return nil, fmt.Errorf("no ffprobe binary available to inspect %q", fname)
	}

	cmd := exec.CommandContext(ctx, probePath,
		"-v", "quiet",
		"-show_entries", "stream=width,height,codec_name,codec_type",
		"-show_entries", "format=format_name",
		"-of", "default=noprint_wrappers=1",
		fname)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String() + "\n" + stdout.String())
		return nil, fmt.Errorf("ffprobe on %q: %w: %s", fname, err, msg)
	}
	return parseProbeOutput(stdout.String(), filepath.Base(fname)), nil
}

// parseProbeOutput reads ffprobe's flat key=value output. A codec_name
// line describes the stream whose codec_type follows it.
func parseProbeOutput(out, basename string) *Info {
	info := &Info{}
	prevCodec := ""

	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "codec_name":
			prevCodec = value
		case "codec_type":
			switch value {
			case "video":
				if info.CodecName == "" {
					info.CodecName = prevCodec
				}
			case "audio":
				if info.AudioCodecName == "" {
					info.AudioCodecName = prevCodec
				}
			}
		case "format_name":
			if info.FormatName == "" {
				info.FormatName = value
			}
		case "width":
			if value != "N/A" {
				info.Width, _ = strconv.Atoi(value)
			}
		case "height":
			if value != "N/A" {
				info.Height, _ = strconv.Atoi(value)
			}
		}
	}

	// ffmpeg reports WebM as part of the Matroska family, so the file
	// extension decides between the two
	if strings.Contains(info.FormatName, "matroska") {
		info.Container = appstream.VideoContainerMKV
	}
	if strings.Contains(info.FormatName, "webm") && strings.HasSuffix(basename, ".webm") {
		info.Container = appstream.VideoContainerWebM
	}

	switch info.CodecName {
	case "av1":
		info.Codec = appstream.VideoCodecAV1
	case "vp9":
		info.Codec = appstream.VideoCodecVP9
	}

	return info
}
