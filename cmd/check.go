package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/icon"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/log"
	"github.com/eonplay/eonplay/player"
	"github.com/eonplay/eonplay/style"
	"github.com/eonplay/eonplay/version"
	"github.com/spf13/viper"
)

func backendBinary() string {
	if b := viper.GetString(key.PlayerBinary); b != "" {
		return b
	}
	return "mpv"
}

// CheckDependencies exits when the decoder executable is missing. An old
// release only earns a warning.
func CheckDependencies() {
	binary := backendBinary()
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}

	banner, err := player.BinaryVersion(binary)
	if err != nil {
		log.For("cmd").WithError(err).Warn("backend version")
		return
	}
	if ok, err := version.BackendSupported(banner); err == nil && !ok {
		_, _ = fmt.Fprintf(os.Stderr, "%s %s is older than %s, some controls may not respond\n",
			icon.Get(icon.Warn), banner, version.MinimumBackend)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The decoder '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
