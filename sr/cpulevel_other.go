//go:build !amd64 && !arm64

package sr

func init() {
	currentLevel = LevelScalar
	currentWidth = 0
}
