package config

import (
	"path/filepath"
	"testing"
)

// TestPlatformPaths는 빌드 모드와 OS별 디렉토리 계산을 테스트합니다.
func TestPlatformPaths(t *testing.T) {
	tests := []struct {
		name string
		mode BuildMode
		env  PathEnv
		want Paths
	}{
		{
			name: "개발 빌드는 상대 경로",
			mode: BuildDev,
			env:  PathEnv{GOOS: "linux", Home: "/home/u"},
			want: Paths{PluginDir: "plugins", LogDir: "logs", ConfigDir: "config"},
		},
		{
			name: "리눅스 XDG 기본값",
			mode: BuildRelease,
			env:  PathEnv{GOOS: "linux", Home: "/home/u"},
			want: Paths{
				PluginDir: filepath.Join("/home/u", ".local", "share", AppDirName, "plugins"),
				LogDir:    filepath.Join("/home/u", ".local", "share", AppDirName, "logs"),
				ConfigDir: filepath.Join("/home/u", ".config", AppDirName),
			},
		},
		{
			name: "리눅스 XDG 환경변수",
			mode: BuildRelease,
			env:  PathEnv{GOOS: "linux", Home: "/home/u", XDGDataHome: "/data", XDGConfigHome: "/conf"},
			want: Paths{
				PluginDir: filepath.Join("/data", AppDirName, "plugins"),
				LogDir:    filepath.Join("/data", AppDirName, "logs"),
				ConfigDir: filepath.Join("/conf", AppDirName),
			},
		},
		{
			name: "macOS Application Support",
			mode: BuildRelease,
			env:  PathEnv{GOOS: "darwin", Home: "/Users/u"},
			want: Paths{
				PluginDir: filepath.Join("/Users/u", "Library", "Application Support", AppDirName, "plugins"),
				LogDir:    filepath.Join("/Users/u", "Library", "Application Support", AppDirName, "logs"),
				ConfigDir: filepath.Join("/Users/u", "Library", "Application Support", AppDirName),
			},
		},
		{
			name: "Windows AppData",
			mode: BuildRelease,
			env:  PathEnv{GOOS: "windows", AppData: `C:\Users\u\AppData\Roaming`},
			want: Paths{
				PluginDir: filepath.Join(`C:\Users\u\AppData\Roaming`, AppDirName, "plugins"),
				LogDir:    filepath.Join(`C:\Users\u\AppData\Roaming`, AppDirName, "logs"),
				ConfigDir: filepath.Join(`C:\Users\u\AppData\Roaming`, AppDirName),
			},
		},
		{
			name: "기준 디렉토리를 알 수 없으면 상대 경로",
			mode: BuildRelease,
			env:  PathEnv{GOOS: "windows"},
			want: Paths{PluginDir: "plugins", LogDir: "logs", ConfigDir: "config"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlatformPaths(tt.mode, tt.env)
			if got != tt.want {
				t.Errorf("PlatformPaths() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestParseBuildMode는 빌드 모드 파싱을 테스트합니다.
func TestParseBuildMode(t *testing.T) {
	if ParseBuildMode("dev") != BuildDev {
		t.Error("dev가 BuildDev로 변환되지 않았습니다")
	}
	for _, s := range []string{"", "release", "prod"} {
		if ParseBuildMode(s) != BuildRelease {
			t.Errorf("ParseBuildMode(%q) != release", s)
		}
	}
}
