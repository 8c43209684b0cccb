package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateResult_String(t *testing.T) {
	assert.Equal(t, "Succeeded", UpdateSucceeded.String())
	assert.Equal(t, "Failed", UpdateFailed.String())
	assert.Equal(t, "NotificationNotFound", UpdateNotificationNotFound.String())
	assert.Equal(t, "Unknown", UpdateResult(9).String())
}

func TestEventArgs(t *testing.T) {
	errNoInput := errors.New("no input")
	var a ActivatedEventArgs = Activation{Args: "x", InputErr: errNoInput}
	input, err := a.UserInput()

	assert.Equal(t, "x", a.Arguments())
	assert.Nil(t, input)
	assert.ErrorIs(t, err, errNoInput)

	var d DismissedEventArgs = Dismissal(ReasonTimedOut)
	assert.Equal(t, ReasonTimedOut, d.Reason())

	var f FailedEventArgs = Failure(-2147024894)
	assert.Equal(t, int32(-2147024894), f.ErrorCode())
}
