package transcript

import (
	"testing"

	yt "github.com/kkdai/youtube/v2"
)

func track(lang, kind string, translatable bool) yt.CaptionTrack {
	t := yt.CaptionTrack{}
	t.BaseURL = "https://example.com/timedtext?lang=" + lang
	t.LanguageCode = lang
	t.Kind = kind
	t.IsTranslatable = translatable

	return t
}

func TestPickTrack(t *testing.T) {
	tests := []struct {
		name       string
		tracks     []yt.CaptionTrack
		wantLang   string
		wantSource Source
		wantOK     bool
	}{
		{
			name: "manual preferred language wins",
			tracks: []yt.CaptionTrack{
				track("en", "", false),
				track("ko", "", false),
				track("ko", "asr", false),
			},
			wantLang:   "ko",
			wantSource: SourceManual,
			wantOK:     true,
		},
		{
			name: "manual english beats auto preferred",
			tracks: []yt.CaptionTrack{
				track("ko", "asr", false),
				track("en", "", false),
			},
			wantLang:   "en",
			wantSource: SourceManual,
			wantOK:     true,
		},
		{
			name: "auto preferred beats auto english",
			tracks: []yt.CaptionTrack{
				track("en", "asr", false),
				track("ko", "asr", false),
			},
			wantLang:   "ko",
			wantSource: SourceAuto,
			wantOK:     true,
		},
		{
			name: "regional variant matches base language",
			tracks: []yt.CaptionTrack{
				track("en-US", "", false),
			},
			wantLang:   "en-US",
			wantSource: SourceManual,
			wantOK:     true,
		},
		{
			name: "translatable fallback renders into preferred language",
			tracks: []yt.CaptionTrack{
				track("ja", "", true),
			},
			wantLang:   "ko",
			wantSource: SourceTranslated,
			wantOK:     true,
		},
		{
			name: "nothing usable",
			tracks: []yt.CaptionTrack{
				track("ja", "", false),
			},
			wantOK: false,
		},
		{
			name:   "no tracks",
			tracks: nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, source, lang, ok := pickTrack(tt.tracks, "ko")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}

			if !ok {
				return
			}

			if source != tt.wantSource || lang != tt.wantLang {
				t.Errorf("pickTrack() = (%v, %q), want (%v, %q)", source, lang, tt.wantSource, tt.wantLang)
			}
		})
	}
}
