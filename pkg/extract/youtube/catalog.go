package youtube

import (
	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

// Catalog builds the YouTube strategy list: CaptionTrack → OEmbed →
// AudioDownloader+Transcribe (if enabled), per SPEC_FULL §4.10.
func Catalog(fetcher *fetchx.Fetcher, transcriber Transcriber, enableAudioDownload bool) []extract.Strategy {
	strategies := []extract.Strategy{
		NewCaptionTrack(fetcher),
		NewOEmbed(fetcher),
	}
	if enableAudioDownload && transcriber != nil {
		strategies = append(strategies, NewAudioDownloader(transcriber))
	}
	return strategies
}
