package progression

import (
	"github.com/lac-hong-legacy/ven_companion/shared"
)

const (
	MessagesPerLevel = 10
	MaxLevel         = 10

	PhotoChanceStep = 10
	PhotoChanceMax  = 100
)

func IsPhotoRequest(text string) bool {
	return text == shared.PhotoRequestMarker
}

// AdvanceLevel applies one counted message to the level track. At the max
// level progress keeps counting but never reaches MessagesPerLevel.
func AdvanceLevel(level, progress int) (int, int, bool) {
	progress++
	if level >= MaxLevel {
		return MaxLevel, min(progress, MessagesPerLevel-1), false
	}
	if progress < MessagesPerLevel {
		return level, progress, false
	}
	return level + 1, 0, true
}

// RaisePhotoChance steps the photo-request ratchet, capped at PhotoChanceMax.
func RaisePhotoChance(percent int) int {
	return min(PhotoChanceMax, percent+PhotoChanceStep)
}
