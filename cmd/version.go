package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/eonplay/eonplay/color"
	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/player"
	"github.com/eonplay/eonplay/style"
	"github.com/eonplay/eonplay/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version")
}

var versionTemplate = lo.Must(template.New("version").Funcs(map[string]any{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
	"red":     style.Fg(color.Red),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Backend" }}         {{ if .Backend }}{{ bold .Backend }}{{ else }}{{ red "not found" }}{{ end }}{{ if .Outdated }} {{ red (printf "(%s or newer recommended)" .Minimum) }}{{ end }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version, build and backend information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		banner, _ := player.BinaryVersion(backendBinary())
		supported, err := version.BackendSupported(banner)

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), struct {
			App, Version, OS, Arch     string
			BuiltAt, BuiltBy, Revision string
			Backend, Minimum           string
			Outdated                   bool
		}{
			App:      constant.AppName,
			Version:  constant.Version,
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			Revision: constant.Revision,
			Backend:  banner,
			Minimum:  version.MinimumBackend,
			Outdated: err == nil && !supported,
		}))
	},
}
