// Package hwaccel reports the hardware decoding capabilities handed to the
// decoder as initialization flags.
package hwaccel

import (
	"runtime"
	"strings"

	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/key"
	"github.com/spf13/viper"
)

// Capabilities describes how the decoder should use the GPU.
type Capabilities struct {
	Enabled  bool
	Decoding string
}

// Probe resolves capabilities from the hardware.* settings and the host platform.
func Probe() Capabilities {
	caps := Capabilities{
		Enabled:  viper.GetBool(key.HardwareEnabled),
		Decoding: strings.TrimSpace(viper.GetString(key.HardwareDecoding)),
	}
	if caps.Decoding == "" {
		caps.Decoding = platformDefault(runtime.GOOS)
	}
	return caps
}

func platformDefault(goos string) string {
	switch goos {
	case constant.Darwin:
		return "videotoolbox"
	case constant.Windows:
		return "d3d11va"
	default:
		return "auto-safe"
	}
}

// MpvFlags returns the decoder flags for c.
func (c Capabilities) MpvFlags() []string {
	if !c.Enabled {
		return []string{"--hwdec=no"}
	}
	return []string{"--hwdec=" + c.Decoding}
}
