package youtube

import (
	"context"
	"fmt"
	"io"

	ytdl "github.com/kkdai/youtube/v2"

	"github.com/adaudit/compliance/pkg/extract"
)

// Transcriber is the minimal capability AudioDownloader needs from the
// reasoner layer: turn a downloaded audio blob into text. Satisfied by
// ReasonerAdapter's transcription model.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// AudioDownloader resolves the lowest-bitrate audio-only stream for a video
// and hands it to the injected Transcriber. Gated behind
// Config.Features.EnableAudioDownload (default off) since it is by far the
// most expensive strategy in the catalog.
type AudioDownloader struct {
	client      ytdl.Client
	Transcriber Transcriber
}

func NewAudioDownloader(transcriber Transcriber) *AudioDownloader {
	return &AudioDownloader{Transcriber: transcriber}
}

func (a *AudioDownloader) Name() string { return "AudioDownloader" }

func (a *AudioDownloader) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	videoID, err := VideoID(src.Input.Href)
	if err != nil {
		return extract.Outcome{}, err
	}

	video, err := a.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("resolve video formats: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return extract.Outcome{}, fmt.Errorf("no audio-only stream available for %s", videoID)
	}
	formats.Sort()
	best := formats[len(formats)-1]

	stream, _, err := a.client.GetStreamContext(ctx, video, &best)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("open audio stream: %w", err)
	}
	defer stream.Close()

	audioBytes, err := io.ReadAll(stream)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("read audio stream: %w", err)
	}

	text, err := a.Transcriber.Transcribe(ctx, audioBytes, best.MimeType)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("transcribe audio: %w", err)
	}

	return extract.Outcome{Text: text, Method: a.Name()}, nil
}
