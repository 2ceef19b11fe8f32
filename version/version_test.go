package version

import "testing"

func TestInfoShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev", Info{Version: "dev"}, "dev"},
		{"commit truncated", Info{Version: "v1.0.0", GitCommit: "abcdef0123456"}, "v1.0.0-abcdef0"},
		{"short commit", Info{Version: "v1.0.0", GitCommit: "abc"}, "v1.0.0-abc"},
		{"dirty", Info{Version: "v1.0.0", GitCommit: "abcdef0", Dirty: true}, "v1.0.0-abcdef0-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.2.0", BuildTime: "2026-01-02T03:04:05Z"}
	if got := info.String(); got != "v1.2.0 (built 2026-01-02T03:04:05Z)" {
		t.Errorf("String() = %q", got)
	}
	if got := (Info{Version: "dev"}).String(); got != "dev" {
		t.Errorf("String() = %q", got)
	}
}

func TestIsRelease(t *testing.T) {
	if (Info{Version: "dev"}).IsRelease() {
		t.Error("dev build is not a release")
	}
	if (Info{Version: "v1.0.0", Dirty: true}).IsRelease() {
		t.Error("dirty build is not a release")
	}
	if !(Info{Version: "v1.0.0"}).IsRelease() {
		t.Error("expected clean tagged build to be a release")
	}
}

func TestGetUsesLinkerValues(t *testing.T) {
	prevVersion, prevCommit, prevTime := Version, GitCommit, BuildTime
	defer func() { Version, GitCommit, BuildTime = prevVersion, prevCommit, prevTime }()

	Version, GitCommit, BuildTime = "v9.9.9", "deadbeefcafe", "2026-05-01T00:00:00Z"
	info := Get()
	if info.Version != "v9.9.9" || info.GitCommit != "deadbeefcafe" || info.BuildTime != "2026-05-01T00:00:00Z" {
		t.Errorf("Get() = %+v", info)
	}
}
