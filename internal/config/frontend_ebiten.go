//go:build !headless

package config

import "github.com/retroenv/retrochip8/internal/ui/ebiten"

func init() {
	frontends[EbitenFrontend] = ebiten.New
}
