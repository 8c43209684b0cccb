package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezchuang/gotoast/toast"
)

func parseContent(t *testing.T, args ...string) (*toast.Toast, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c := bindContent(fs)
	require.NoError(t, fs.Parse(args))
	return c.toast()
}

func TestContentFlags_Audio(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want *toast.Audio
	}{
		{name: "none", args: nil, want: nil},
		{name: "loop only", args: []string{"-loop"}, want: &toast.Audio{Source: toast.AudioDefault, Looping: true}},
		{name: "silent only", args: []string{"-silent"}, want: &toast.Audio{Source: toast.AudioDefault, Silent: true}},
		{name: "named", args: []string{"-audio", "Mail"}, want: &toast.Audio{Source: toast.AudioMail}},
		{name: "named looping", args: []string{"-audio", "Looping.Alarm", "-loop"}, want: &toast.Audio{Source: toast.AudioAlarm, Looping: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tst, err := parseContent(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tst.Audio)
		})
	}
}

func TestContentFlags_Texts(t *testing.T) {
	tst, err := parseContent(t)
	require.NoError(t, err)
	assert.Equal(t, []string{"gotoast"}, tst.TextFields)

	tst, err = parseContent(t, "-text", "Title", "-text", "Body")
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Body"}, tst.TextFields)
}

func TestContentFlags_ButtonsUseReplyBox(t *testing.T) {
	tst, err := parseContent(t, "-reply", "Type here", "-button", "Send=send", "-button", "Later")
	require.NoError(t, err)

	require.Len(t, tst.Inputs, 1)
	reply, ok := tst.Inputs[0].(*toast.TextBox)
	require.True(t, ok)
	assert.Equal(t, "reply", reply.ID)
	assert.Equal(t, "Type here", reply.Placeholder)

	require.Len(t, tst.Actions, 2)
	send := tst.Actions[0].(*toast.Button)
	assert.Equal(t, "Send", send.Content)
	assert.Equal(t, "send", send.Arguments)
	assert.Same(t, reply, send.RelatedInput)

	later := tst.Actions[1].(*toast.Button)
	assert.Equal(t, "Later", later.Arguments)
	assert.Same(t, reply, later.RelatedInput)
}

func TestContentFlags_ButtonsWithoutReply(t *testing.T) {
	tst, err := parseContent(t, "-button", "Open=open")
	require.NoError(t, err)
	require.Len(t, tst.Actions, 1)
	assert.Nil(t, tst.Actions[0].(*toast.Button).RelatedInput)
	assert.Empty(t, tst.Inputs)
}

func TestContentFlags_Identity(t *testing.T) {
	before := time.Now()
	tst, err := parseContent(t,
		"-tag", "build-42",
		"-group", "builds",
		"-launch", "myapp:open",
		"-expire", "1h",
		"-quiet",
		"-scenario", "reminder",
		"-duration", "long",
	)
	require.NoError(t, err)

	assert.Equal(t, "build-42", tst.Tag)
	assert.Equal(t, "builds", tst.Group)
	assert.Equal(t, "myapp:open", tst.LaunchAction)
	assert.True(t, tst.SuppressPopup)
	assert.Equal(t, toast.ScenarioReminder, tst.Scenario)
	assert.Equal(t, toast.DurationLong, tst.Duration)
	assert.False(t, tst.ExpirationTime.Before(before.Add(time.Hour)))

	tst, err = parseContent(t)
	require.NoError(t, err)
	assert.NotEmpty(t, tst.Tag, "generated when -tag is empty")
	assert.True(t, tst.ExpirationTime.IsZero())
}

func TestContentFlags_Images(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	tst, err := parseContent(t, "-image", path, "-hero", path, "-logo", path, "-circle")
	require.NoError(t, err)
	require.Len(t, tst.Images, 3)
	assert.Equal(t, toast.PlacementInline, tst.Images[0].Placement)
	assert.Equal(t, toast.PlacementHero, tst.Images[1].Placement)
	assert.False(t, tst.Images[1].CircleCrop, "only the app logo is cropped")
	assert.Equal(t, toast.PlacementAppLogo, tst.Images[2].Placement)
	assert.True(t, tst.Images[2].CircleCrop)

	_, err = parseContent(t, "-image", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, toast.ErrInvalidImage)
}
