package cmd

import (
	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/intake"
	"github.com/eonplay/eonplay/loop"
	"github.com/eonplay/eonplay/player"
	"github.com/eonplay/eonplay/settings"
	"github.com/eonplay/eonplay/util"
)

// standaloneIntake returns an intake without a decoder backend for commands
// that only inspect files. The returned func releases its loop.
func standaloneIntake() (*intake.Intake, func()) {
	l := loop.New()
	in := intake.New(nil, bus.NewBus(), l, settings.NewViper(),
		intake.WithProber(player.Prober{Binary: backendBinary()}),
	)
	return in, l.Close
}

func outputWidth() int {
	if w, _, err := util.TerminalSize(); err == nil && w > 0 {
		return w
	}
	return 80
}
