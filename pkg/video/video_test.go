package video

import (
	"testing"

	"github.com/appstream-tools/compose/pkg/appstream"
)

const probeOutputWebM = `width=1280
height=720
codec_name=vp9
codec_type=video
format_name=matroska,webm
`

const probeOutputWithAudio = `width=1920
height=1080
codec_name=av1
codec_type=video
codec_name=opus
codec_type=audio
format_name=matroska,webm
`

const probeOutputBad = `width=640
height=480
codec_name=h264
codec_type=video
codec_name=aac
codec_type=audio
format_name=mov,mp4,m4a,3gp,3g2,mj2
`

func TestParseProbeOutputWebM(t *testing.T) {
	info := parseProbeOutput(probeOutputWebM, "demo.webm")

	if info.Width != 1280 || info.Height != 720 {
		t.Errorf("dimensions = %dx%d", info.Width, info.Height)
	}
	if info.CodecName != "vp9" || info.Codec != appstream.VideoCodecVP9 {
		t.Errorf("codec = %q (%v)", info.CodecName, info.Codec)
	}
	if info.Container != appstream.VideoContainerWebM {
		t.Errorf("container = %v, .webm suffix should win over matroska", info.Container)
	}
	if info.HasAudio() {
		t.Error("no audio track expected")
	}
	if !info.Acceptable() {
		t.Error("vp9/webm without audio should be acceptable")
	}
}

func TestParseProbeOutputMatroskaExtension(t *testing.T) {
	info := parseProbeOutput(probeOutputWebM, "demo.mkv")
	if info.Container != appstream.VideoContainerMKV {
		t.Errorf("container = %v, non-webm extension should classify as mkv", info.Container)
	}
}

func TestParseProbeOutputAudio(t *testing.T) {
	info := parseProbeOutput(probeOutputWithAudio, "demo.webm")

	if info.Codec != appstream.VideoCodecAV1 {
		t.Errorf("codec = %v", info.Codec)
	}
	if !info.HasAudio() || info.AudioCodecName != "opus" {
		t.Errorf("audio = %q", info.AudioCodecName)
	}
	if !info.AudioAcceptable() || !info.Acceptable() {
		t.Error("opus audio is permitted")
	}
}

func TestParseProbeOutputUnsupported(t *testing.T) {
	info := parseProbeOutput(probeOutputBad, "demo.mp4")

	if info.Codec != appstream.VideoCodecUnknown {
		t.Errorf("codec = %v", info.Codec)
	}
	if info.Container != appstream.VideoContainerUnknown {
		t.Errorf("container = %v", info.Container)
	}
	if info.AudioAcceptable() {
		t.Error("aac audio is not permitted")
	}
	if info.Acceptable() {
		t.Error("h264/mp4 must be rejected")
	}
}

func TestParseProbeOutputNA(t *testing.T) {
	info := parseProbeOutput("width=N/A\nheight=N/A\nformat_name=webm\n", "x.webm")
	if info.Width != 0 || info.Height != 0 {
		t.Errorf("N/A dimensions should stay zero, got %dx%d", info.Width, info.Height)
	}
}
