package toast

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudio_URIBuiltIn(t *testing.T) {
	tests := []struct {
		name  string
		audio *Audio
		want  string
	}{
		{"default", &Audio{}, "ms-winsoundevent:Notification.Default"},
		{"mail", NewAudio(AudioMail), "ms-winsoundevent:Notification.Mail"},
		{"looping alarm", NewAudio(AudioAlarm3), "ms-winsoundevent:Notification.Looping.Alarm3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.audio.URI())
		})
	}
}

func TestAudioFromFile_Valid(t *testing.T) {
	buf := captureWarnings(t)
	path := writeFile(t, "ding.wav")

	a := AudioFromFile(path)

	assert.True(t, strings.HasPrefix(a.URI(), "file:///"))
	assert.True(t, strings.HasSuffix(a.URI(), "/ding.wav"))
	assert.Empty(t, buf.String())
}

func TestAudioFromFile_WarnsButKeeps(t *testing.T) {
	buf := captureWarnings(t)

	a := AudioFromFile(filepath.Join(t.TempDir(), "ding.txt"))

	assert.NotNil(t, a)
	assert.True(t, strings.HasSuffix(a.URI(), "/ding.txt"))
	assert.Contains(t, buf.String(), "does not exist")
	assert.Contains(t, buf.String(), "not supported")
}
