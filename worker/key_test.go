package worker

import (
	"errors"
	"testing"
)

func TestResolveObjectKey(t *testing.T) {
	tests := []struct {
		name        string
		explicitKey string
		rawURL      string
		bucket      string
		want        string
		wantErr     bool
	}{
		{
			name:        "explicit key wins over url",
			explicitKey: "uploads/scan.laz",
			rawURL:      "https://assets.example.com/other/file.laz",
			bucket:      "hekamap-assets",
			want:        "uploads/scan.laz",
		},
		{
			name:        "explicit key trims leading slashes",
			explicitKey: "//uploads/scan.laz",
			want:        "uploads/scan.laz",
		},
		{
			name:        "explicit key of only slashes fails",
			explicitKey: "///",
			wantErr:     true,
		},
		{
			name:   "url path with bucket prefix stripped",
			rawURL: "https://pub.r2.dev/hekamap-assets/a/b.laz",
			bucket: "hekamap-assets",
			want:   "a/b.laz",
		},
		{
			name:   "url path without bucket prefix unchanged",
			rawURL: "https://assets.example.com/a/b.laz",
			bucket: "hekamap-assets",
			want:   "a/b.laz",
		},
		{
			name:    "neither key nor url",
			wantErr: true,
		},
		{
			name:    "url with empty path fails",
			rawURL:  "https://assets.example.com/",
			bucket:  "hekamap-assets",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveObjectKey(tt.explicitKey, tt.rawURL, tt.bucket)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got key %q", got)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got key %q, want %q", got, tt.want)
			}
		})
	}
}
