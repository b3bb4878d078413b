package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSwedish(t *testing.T) {
	text := "Vilken utdelning föreslås och hur ser resultatet ut?"
	assert.Equal(t, Swedish, Detect(text))
}

func TestDetectEnglishByDefault(t *testing.T) {
	assert.Equal(t, English, Detect("What dividend is proposed for next year?"))
	assert.Equal(t, English, Detect(""))
}

func TestDetectSingleKeywordIsNotEnough(t *testing.T) {
	// one hit stays below the threshold
	assert.Equal(t, English, Detect("The aktie market closed higher today."))
}
