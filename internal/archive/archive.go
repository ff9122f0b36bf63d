// Package archive는 압축 어댑터가 공유하는 파일 시스템 헬퍼를 제공합니다.
// 입력 수집, 안전한 해제 경로 계산, 충돌 검사를 담당합니다.
package archive

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/insajin/smart-transfer/internal/plugin"
)

// Entry는 아카이브에 들어갈 파일 또는 디렉토리 하나입니다.
type Entry struct {
	// Path는 디스크상의 경로입니다.
	Path string
	// Name은 아카이브 안의 슬래시 구분 상대 이름입니다.
	Name string
	// Info는 파일 정보입니다.
	Info fs.FileInfo
}

// IsDir은 디렉토리 항목인지 반환합니다.
func (e Entry) IsDir() bool {
	return e.Info != nil && e.Info.IsDir()
}

// Collect는 inputs를 아카이브 항목 목록으로 펼칩니다.
// 디렉토리는 재귀적으로 탐색되며 이름은 디렉토리 자신의 이름으로 시작합니다.
// 입력이 없으면 InvalidInput, 존재하지 않는 입력은 NotFound입니다.
func Collect(inputs []string) ([]Entry, error) {
	if len(inputs) == 0 {
		return nil, plugin.InvalidInput("no input files")
	}

	var entries []Entry
	seen := make(map[string]string)

	add := func(e Entry) error {
		if prev, dup := seen[e.Name]; dup {
			return plugin.InvalidInput("duplicate archive entry " + e.Name + " from " + prev + " and " + e.Path)
		}
		seen[e.Name] = e.Path
		entries = append(entries, e)
		return nil
	}

	for _, input := range inputs {
		if input == "" {
			return nil, plugin.InvalidInput("empty input path")
		}
		info, err := os.Stat(input)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, plugin.NotFound(input)
		}
		if err != nil {
			return nil, plugin.Other("failed to stat "+input, err)
		}

		base := filepath.Base(filepath.Clean(input))
		if !info.IsDir() {
			if err := add(Entry{Path: input, Name: base, Info: info}); err != nil {
				return nil, err
			}
			continue
		}

		root := filepath.Clean(input)
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			// 심볼릭 링크와 특수 파일은 건너뜁니다.
			if !fi.IsDir() && !fi.Mode().IsRegular() {
				return nil
			}
			name := base
			if rel != "." {
				name = path.Join(base, filepath.ToSlash(rel))
			}
			return add(Entry{Path: p, Name: name, Info: fi})
		})
		if err != nil {
			if plugin.KindOf(err) != plugin.KindOther {
				return nil, err
			}
			return nil, plugin.Other("failed to walk "+input, err)
		}
	}

	return entries, nil
}

// SingleFile은 단일 스트림 코덱용 입력을 검증합니다.
// 정확히 하나의 일반 파일이어야 합니다.
func SingleFile(inputs []string) (string, fs.FileInfo, error) {
	if len(inputs) == 0 {
		return "", nil, plugin.InvalidInput("no input files")
	}
	if len(inputs) > 1 {
		return "", nil, plugin.InvalidInput("single-stream codec accepts exactly one input file")
	}
	info, err := os.Stat(inputs[0])
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, plugin.NotFound(inputs[0])
	}
	if err != nil {
		return "", nil, plugin.Other("failed to stat "+inputs[0], err)
	}
	if !info.Mode().IsRegular() {
		return "", nil, plugin.InvalidInput(inputs[0] + " is not a regular file")
	}
	return inputs[0], info, nil
}

// OpenArchive는 해제할 아카이브 경로를 검증합니다.
// 없으면 NotFound, 디렉토리면 InvalidInput입니다.
func OpenArchive(archive string) (fs.FileInfo, error) {
	if archive == "" {
		return nil, plugin.InvalidInput("empty archive path")
	}
	info, err := os.Stat(archive)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, plugin.NotFound(archive)
	}
	if err != nil {
		return nil, plugin.Other("failed to stat "+archive, err)
	}
	if info.IsDir() {
		return nil, plugin.InvalidInput(archive + " is a directory")
	}
	return info, nil
}

// PrepareOutput은 압축 결과 파일의 상위 디렉토리를 만듭니다.
func PrepareOutput(output string) error {
	if output == "" {
		return plugin.InvalidInput("empty output path")
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return plugin.InvalidInput(output + " is a directory")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return plugin.Other("failed to create output directory", err)
	}
	return nil
}

// EnsureDir은 해제 대상 디렉토리를 만듭니다.
func EnsureDir(dir string) error {
	if dir == "" {
		return plugin.InvalidInput("empty output directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return plugin.Other("failed to create "+dir, err)
	}
	return nil
}

// SafeJoin은 아카이브 항목 이름을 root 아래 경로로 변환합니다.
// 절대 경로나 root 밖으로 벗어나는 이름은 InvalidInput입니다.
func SafeJoin(root, name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if clean == "." || clean == "" {
		return "", plugin.InvalidInput("empty archive entry name")
	}
	if path.IsAbs(clean) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", plugin.InvalidInput("absolute archive entry " + name)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", plugin.InvalidInput("archive entry escapes output directory: " + name)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

// Collisions는 root 아래에서 이미 존재하는 파일 경로를 반환합니다.
// 디렉토리 항목은 충돌로 보지 않습니다.
func Collisions(root string, names []string) ([]string, error) {
	var existing []string
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		target, err := SafeJoin(root, name)
		if err != nil {
			return nil, err
		}
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			existing = append(existing, target)
		}
	}
	return existing, nil
}

// CheckCollisions는 Collisions가 하나라도 있으면 AlreadyExists를 반환합니다.
func CheckCollisions(root string, names []string) error {
	existing, err := Collisions(root, names)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return plugin.AlreadyExists(existing[0])
	}
	return nil
}

// Stem은 경로의 마지막 확장자를 제거한 파일 이름을 반환합니다.
// "data.txt.zst"는 "data.txt"가 됩니다.
func Stem(p string) string {
	base := filepath.Base(p)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return base + ".out"
	}
	return strings.TrimSuffix(base, ext)
}

// WriteFile은 fill이 쓴 내용을 target에 원자적으로 저장합니다.
// 같은 디렉토리의 임시 파일에 쓴 뒤 rename하므로 fill이 실패하면 target은 바뀌지 않습니다.
// overwrite가 false이고 target이 이미 있으면 AlreadyExists입니다.
func WriteFile(target string, overwrite bool, fill func(w io.Writer) error) (err error) {
	if !overwrite {
		if _, statErr := os.Stat(target); statErr == nil {
			return plugin.AlreadyExists(target)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return plugin.Other("failed to create temporary file for "+target, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return plugin.Other("failed to close "+tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return plugin.Other("failed to move output into place: "+target, err)
	}
	return nil
}
