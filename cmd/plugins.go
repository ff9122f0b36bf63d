package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/insajin/smart-transfer/internal/branding"
	"github.com/insajin/smart-transfer/internal/manager"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// pluginsCmd는 플러그인 관리를 위한 상위 명령어입니다.
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "플러그인을 조회합니다",
}

// pluginsListCmd는 등록된 플러그인 목록을 출력합니다.
var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "등록된 플러그인 목록을 출력합니다",
	Long: `내장 플러그인과 플러그인 디렉토리에서 로드된 플러그인을 출력합니다.

출력 형식: table (기본), json, yaml`,
	RunE: runPluginsList,
}

// pluginsInfoCmd는 플러그인 하나의 상세 정보를 출력합니다.
var pluginsInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "플러그인 상세 정보를 출력합니다",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginsInfo,
}

// pluginsWatchCmd는 플러그인 디렉토리를 감시합니다.
var pluginsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "플러그인 디렉토리를 감시하며 새 라이브러리를 로드합니다",
	Long: `플러그인 디렉토리에 새로 복사된 라이브러리를 로드하고 등록합니다.
Ctrl+C로 종료합니다.`,
	RunE: runPluginsWatch,
}

var pluginsOutput string

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsInfoCmd)
	pluginsCmd.AddCommand(pluginsWatchCmd)

	pluginsListCmd.Flags().StringVarP(&pluginsOutput, "output", "o", "table", "출력 형식 (table, json, yaml)")
	pluginsInfoCmd.Flags().StringVarP(&pluginsOutput, "output", "o", "yaml", "출력 형식 (json, yaml)")
}

// runPluginsList는 플러그인 목록을 출력합니다.
func runPluginsList(cmd *cobra.Command, args []string) error {
	m, _, err := openManager()
	if err != nil {
		return err
	}
	defer closeManager(m)

	if err := renderPlugins(cmd.OutOrStdout(), m.ListPlugins(), pluginsOutput); err != nil {
		return err
	}

	for _, s := range m.Skipped() {
		fmt.Fprintf(cmd.ErrOrStderr(), "건너뜀: %s (%v)\n", s.Path, s.Err)
	}
	return nil
}

// runPluginsInfo는 플러그인 상세 정보를 출력합니다.
func runPluginsInfo(cmd *cobra.Command, args []string) error {
	m, _, err := openManager()
	if err != nil {
		return err
	}
	defer closeManager(m)

	info, err := m.PluginInfo(args[0])
	if err != nil {
		return err
	}
	return encode(cmd.OutOrStdout(), info, pluginsOutput)
}

// runPluginsWatch는 인터럽트까지 플러그인 디렉토리를 감시합니다.
func runPluginsWatch(cmd *cobra.Command, args []string) error {
	m, _, err := openManager()
	if err != nil {
		return err
	}
	defer closeManager(m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := m.Watch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "감시 중: %s (Ctrl+C로 종료)\n", m.PluginsDir())
	for ev := range events {
		if ev.Err != nil {
			fmt.Fprintf(out, "  실패: %s (%v)\n", ev.Path, ev.Err)
			continue
		}
		fmt.Fprintf(out, "  등록: %s (%s)\n", ev.Plugin, ev.Path)
	}
	return nil
}

// renderPlugins는 플러그인 목록을 지정한 형식으로 씁니다.
func renderPlugins(w io.Writer, infos []manager.PluginInfo, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		_, err := fmt.Fprintln(w, pluginTable(infos))
		return err
	default:
		return encode(w, infos, format)
	}
}

// encode는 값을 json 또는 yaml로 씁니다.
func encode(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return plugin.InvalidInput("unknown output format: " + format)
	}
}

// pluginTable은 플러그인 목록을 lipgloss 표로 렌더링합니다.
func pluginTable(infos []manager.PluginInfo) string {
	if len(infos) == 0 {
		return "등록된 플러그인이 없습니다."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(branding.ColorPrimary)).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		state := "ready"
		if !info.Initialized {
			state = "idle"
		}
		rows = append(rows, []string{
			info.Name,
			info.Version,
			string(info.Type),
			state,
			strings.Join(info.Capabilities, ","),
			info.Source,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(branding.ColorBorderGray))).
		Headers("NAME", "VERSION", "TYPE", "STATE", "CAPABILITIES", "SOURCE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}
