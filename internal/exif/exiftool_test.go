package exif

import (
	"os"
	"path/filepath"
	"testing"
)

func sp(v string) *string { return &v }

func TestBuildArgs(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "date and tags",
			req:  Request{Path: "1.jpg", Date: sp("2024-06-01"), Tags: sp("sunset,beach")},
			want: []string{"-DateTimeOriginal=2024-06-01", "-Keywords=sunset,beach", "1.jpg"},
		},
		{
			name: "date only",
			req:  Request{Path: "1.jpg", Date: sp("2024-06-01")},
			want: []string{"-DateTimeOriginal=2024-06-01", "1.jpg"},
		},
		{
			name: "empty",
			req:  Request{Path: "1.jpg"},
			want: []string{"1.jpg"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := buildArgs(tc.req)
			if len(got) != len(tc.want) {
				t.Fatalf("len=%d want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("arg %d: %q want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestRemoveBackup(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "1.jpg")
	backup := target + "_original"
	if err := os.WriteFile(backup, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	removeBackup(target)
	if _, err := os.Stat(backup); !os.IsNotExist(err) {
		t.Fatalf("backup still present: %v", err)
	}
}
