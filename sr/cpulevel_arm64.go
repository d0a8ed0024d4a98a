//go:build arm64

package sr

import "golang.org/x/sys/cpu"

func init() {
	if cpu.ARM64.HasASIMD {
		currentLevel = LevelNEON
		currentWidth = 16
		return
	}
	currentLevel = LevelScalar
	currentWidth = 0
}
