package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName은 플랫폼 데이터/설정 디렉토리 아래의 애플리케이션 폴더 이름입니다.
const AppDirName = "smart-transfer"

// BuildMode는 빌드 종류입니다. 개발 빌드는 작업 디렉토리 기준 상대 경로를 사용합니다.
type BuildMode string

const (
	BuildDev     BuildMode = "dev"
	BuildRelease BuildMode = "release"
)

// ParseBuildMode는 ldflags로 주입된 문자열을 BuildMode로 변환합니다.
// 알 수 없는 값은 release로 취급합니다.
func ParseBuildMode(s string) BuildMode {
	if s == string(BuildDev) {
		return BuildDev
	}
	return BuildRelease
}

// PathEnv는 플랫폼 경로 계산에 필요한 환경입니다.
type PathEnv struct {
	GOOS          string
	Home          string
	AppData       string // Windows %AppData%
	XDGDataHome   string
	XDGConfigHome string
}

// CurrentPathEnv는 현재 프로세스의 환경을 읽습니다.
func CurrentPathEnv() PathEnv {
	home, _ := os.UserHomeDir()
	return PathEnv{
		GOOS:          runtime.GOOS,
		Home:          home,
		AppData:       os.Getenv("APPDATA"),
		XDGDataHome:   os.Getenv("XDG_DATA_HOME"),
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
	}
}

// Paths는 애플리케이션이 사용하는 디렉토리입니다.
type Paths struct {
	PluginDir string
	LogDir    string
	ConfigDir string
}

// PlatformPaths는 빌드 모드와 OS에 따른 디렉토리를 계산합니다.
// 플랫폼 기준 디렉토리를 알 수 없으면 개발 빌드와 같은 상대 경로로 대체합니다.
func PlatformPaths(mode BuildMode, env PathEnv) Paths {
	relative := Paths{PluginDir: "plugins", LogDir: "logs", ConfigDir: "config"}
	if mode == BuildDev {
		return relative
	}

	dataDir, configDir := baseDirs(env)
	if dataDir == "" || configDir == "" {
		return relative
	}

	return Paths{
		PluginDir: filepath.Join(dataDir, AppDirName, "plugins"),
		LogDir:    filepath.Join(dataDir, AppDirName, "logs"),
		ConfigDir: filepath.Join(configDir, AppDirName),
	}
}

// CurrentPaths는 현재 환경의 Paths를 반환합니다.
func CurrentPaths(mode BuildMode) Paths {
	return PlatformPaths(mode, CurrentPathEnv())
}

// baseDirs는 OS별 데이터/설정 기준 디렉토리를 반환합니다.
func baseDirs(env PathEnv) (dataDir, configDir string) {
	switch env.GOOS {
	case "windows":
		return env.AppData, env.AppData
	case "darwin":
		if env.Home == "" {
			return "", ""
		}
		support := filepath.Join(env.Home, "Library", "Application Support")
		return support, support
	default:
		dataDir = env.XDGDataHome
		configDir = env.XDGConfigHome
		if env.Home != "" {
			if dataDir == "" {
				dataDir = filepath.Join(env.Home, ".local", "share")
			}
			if configDir == "" {
				configDir = filepath.Join(env.Home, ".config")
			}
		}
		return dataDir, configDir
	}
}
