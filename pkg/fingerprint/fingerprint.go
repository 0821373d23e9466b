// Package fingerprint classifies a raw audit.Input into the audit.Kind the
// rest of the pipeline dispatches on. It is a pure function: no I/O, no
// network calls, just URL parsing and MIME inspection.
package fingerprint

import (
	"net/url"
	"strings"

	"github.com/adaudit/compliance/internal/pipelineerr"
	"github.com/adaudit/compliance/pkg/audit"
)

var mediaExtensions = map[string]bool{
	"mp3": true, "mp4": true, "wav": true, "m4a": true, "aac": true,
	"ogg": true, "flac": true, "webm": true, "mov": true, "avi": true,
	"mkv": true, "flv": true,
}

var knownVideoHosts = map[string]bool{
	"vimeo.com":      true,
	"dailymotion.com": true,
}

var youtubeHosts = map[string]bool{
	"youtube.com":    true,
	"www.youtube.com": true,
	"m.youtube.com":  true,
	"youtu.be":       true,
}

// Classify determines the audit.Kind of in, or fails with an
// InputInvalid error.
func Classify(in audit.Input) (audit.Kind, error) {
	switch in.Variant {
	case audit.InputText:
		if strings.TrimSpace(in.Body) == "" {
			return "", pipelineerr.New(pipelineerr.KindInputInvalid, "text input body is empty")
		}
		return audit.KindText, nil

	case audit.InputURL:
		return classifyURL(in.Href)

	case audit.InputFile:
		return classifyFile(in.MIME)

	default:
		return "", pipelineerr.New(pipelineerr.KindInputInvalid, "unrecognized input variant")
	}
}

func classifyURL(href string) (audit.Kind, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", pipelineerr.Wrap(pipelineerr.KindInputInvalid, "malformed url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", pipelineerr.New(pipelineerr.KindInputInvalid, "unsupported url scheme: "+u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if youtubeHosts[host] {
		return audit.KindYouTube, nil
	}

	ext := strings.ToLower(strings.TrimPrefix(pathExt(u.Path), "."))
	if mediaExtensions[ext] || knownVideoHosts[host] {
		return audit.KindMediaURL, nil
	}

	return audit.KindWebPage, nil
}

func pathExt(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[idx:]
}

func classifyFile(mime string) (audit.Kind, error) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return audit.KindImage, nil
	case strings.HasPrefix(mime, "audio/"):
		return audit.KindAudio, nil
	case strings.HasPrefix(mime, "video/"):
		return audit.KindVideo, nil
	case mime == "application/pdf",
		mime == "application/msword",
		mime == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return audit.KindDocument, nil
	default:
		return "", pipelineerr.New(pipelineerr.KindInputInvalid, "unsupported file mime: "+mime)
	}
}
