package videoid

import (
	"reflect"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "standard watch link",
			text: "Check this out: https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "short link",
			text: "https://youtu.be/dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "watch link with extra params before v",
			text: "https://www.youtube.com/watch?list=PLx&v=dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "mobile watch link",
			text: "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "embed link",
			text: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "shorts link",
			text: "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "live link",
			text: "https://www.youtube.com/live/dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "no scheme",
			text: "youtu.be/dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "same video in two shapes",
			text: "https://youtu.be/dQw4w9WgXcQ and https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: []string{"dQw4w9WgXcQ"},
		},
		{
			name: "multiple videos keep text order",
			text: "first https://www.youtube.com/watch?v=aaaaaaaaaaa then https://youtu.be/bbbbbbbbbbb",
			want: []string{"aaaaaaaaaaa", "bbbbbbbbbbb"},
		},
		{
			name: "no links",
			text: "just a plain message",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "truncated identifier ignored",
			text: "https://youtu.be/shortid",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"dQw4w9WgXcQ", true},
		{"a_b-c_d-e_f", true},
		{"short", false},
		{"waytoolongidentifier", false},
		{"dQw4w9WgXc!", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Validate(tt.id); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestWatchURL(t *testing.T) {
	if got := WatchURL("dQw4w9WgXcQ"); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("WatchURL() = %v", got)
	}
}
