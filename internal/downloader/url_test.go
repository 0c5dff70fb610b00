package downloader

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		want    Kind
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo, false},
		{"schemeless watch", "youtube.com/watch?v=dQw4w9WgXcQ", KindVideo, false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", KindVideo, false},
		{"shorts path", "https://www.youtube.com/shorts/dQw4w9WgXcQ", KindVideo, false},
		{"live path", "https://www.youtube.com/live/dQw4w9WgXcQ", KindVideo, false},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo, false},
		{"playlist url", "https://www.youtube.com/playlist?list=PLBCF2DAC6FFB574DE", KindPlaylist, false},
		{"watch inside playlist prefers playlist", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLBCF2DAC6FFB574DE", KindPlaylist, false},
		{"music playlist", "https://music.youtube.com/playlist?list=OLAK5uy_lkBCfa1Rk8g3VX7QPZkHEwq9nYjbEE1Eo", KindPlaylist, false},
		{"empty", "", "", true},
		{"not a url", "not a url at all", "", true},
		{"wrong host", "https://vimeo.com/12345", "", true},
		{"wrong scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ", "", true},
		{"watch without id", "https://www.youtube.com/watch", "", true},
		{"short video id", "https://www.youtube.com/watch?v=short", "", true},
		{"playlist without list", "https://www.youtube.com/playlist", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := Classify(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Classify(%q): expected error, got %q", tc.url, kind)
				}
				if CategoryOf(err) != CategoryInvalidURL {
					t.Fatalf("Classify(%q): expected invalid_url category, got %q", tc.url, CategoryOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q): %v", tc.url, err)
			}
			if kind != tc.want {
				t.Fatalf("Classify(%q) = %q, want %q", tc.url, kind, tc.want)
			}
		})
	}
}

func TestConvertMusicURL(t *testing.T) {
	in := "https://music.youtube.com/playlist?list=OLAK5uy_lkBCfa1Rk8g3VX7QPZkHEwq9nYjbEE1Eo&si=tracking"
	out := ConvertMusicURL(in)
	if out != "https://www.youtube.com/playlist?list=OLAK5uy_lkBCfa1Rk8g3VX7QPZkHEwq9nYjbEE1Eo" {
		t.Fatalf("ConvertMusicURL(%q) = %q", in, out)
	}

	plain := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if got := ConvertMusicURL(plain); got != plain {
		t.Fatalf("non-music URL should pass through, got %q", got)
	}
}

func TestNormalizeYouTubeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"https://www.youtube.com/live/dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
	}
	for _, tc := range cases {
		if got := NormalizeYouTubeURL(tc.in); got != tc.want {
			t.Fatalf("NormalizeYouTubeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
