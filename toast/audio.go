package toast

import (
	"os"
	"path/filepath"
	"strings"
)

// AudioSource is one of the sounds built into Windows.
type AudioSource string

const (
	AudioDefault  AudioSource = "Default"
	AudioIM       AudioSource = "IM"
	AudioMail     AudioSource = "Mail"
	AudioReminder AudioSource = "Reminder"
	AudioSMS      AudioSource = "SMS"
	AudioAlarm    AudioSource = "Looping.Alarm"
	AudioAlarm2   AudioSource = "Looping.Alarm2"
	AudioAlarm3   AudioSource = "Looping.Alarm3"
	AudioAlarm4   AudioSource = "Looping.Alarm4"
	AudioAlarm5   AudioSource = "Looping.Alarm5"
	AudioAlarm6   AudioSource = "Looping.Alarm6"
	AudioAlarm7   AudioSource = "Looping.Alarm7"
	AudioAlarm8   AudioSource = "Looping.Alarm8"
	AudioAlarm9   AudioSource = "Looping.Alarm9"
	AudioAlarm10  AudioSource = "Looping.Alarm10"
	AudioCall     AudioSource = "Looping.Call"
	AudioCall2    AudioSource = "Looping.Call2"
	AudioCall3    AudioSource = "Looping.Call3"
	AudioCall4    AudioSource = "Looping.Call4"
	AudioCall5    AudioSource = "Looping.Call5"
	AudioCall6    AudioSource = "Looping.Call6"
	AudioCall7    AudioSource = "Looping.Call7"
	AudioCall8    AudioSource = "Looping.Call8"
	AudioCall9    AudioSource = "Looping.Call9"
	AudioCall10   AudioSource = "Looping.Call10"
)

var audioExtensions = map[string]bool{
	".aac":  true,
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".wav":  true,
	".wma":  true,
}

// Audio describes the sound played with a toast. File, when set, takes
// precedence over Source.
type Audio struct {
	Source  AudioSource
	File    string
	Looping bool
	Silent  bool
}

// NewAudio returns an audio description for a built-in sound.
func NewAudio(source AudioSource) *Audio {
	return &Audio{Source: source}
}

// AudioFromFile returns an audio description for a custom sound file. A
// missing file or unknown extension is only warned about: the OS plays the
// default sound instead of rejecting the toast.
func AudioFromFile(path string) *Audio {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if _, err := os.Stat(abs); err != nil {
		warn("audio file does not exist, the default sound will play", "path", abs)
	}
	if ext := strings.ToLower(filepath.Ext(abs)); !audioExtensions[ext] {
		warn("audio file extension is not supported, the default sound will play", "path", abs, "ext", ext)
	}
	return &Audio{File: fileURI(abs)}
}

// URI is the sound reference written to the audio element.
func (a *Audio) URI() string {
	if a.File != "" {
		return a.File
	}
	src := a.Source
	if src == "" {
		src = AudioDefault
	}
	return "ms-winsoundevent:Notification." + string(src)
}
