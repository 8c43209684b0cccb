package toaster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezchuang/gotoast/toast"
)

func TestBuildAdaptableData(t *testing.T) {
	tst := toast.New(
		toast.WithText("Title", "", "Third"),
		toast.WithProgressBar(&toast.ProgressBar{Status: "Working", Progress: toast.Percent(0.125)}),
	)

	data := buildAdaptableData(tst)
	assert.EqualValues(t, 1, data.SequenceNumber)
	assert.EqualValues(t, 1, tst.Updates)
	assert.Equal(t, map[string]string{
		"text1":             "Title",
		"text3":             "Third",
		"status":            "Working",
		"progress":          "0.125",
		"progress_override": "12%",
		"caption":           "",
	}, data.Values)

	assert.EqualValues(t, 2, buildAdaptableData(tst).SequenceNumber)
}

func TestBuildAdaptableData_Indeterminate(t *testing.T) {
	tst := toast.New(toast.WithProgressBar(&toast.ProgressBar{Status: "Waiting", Override: "soon", Caption: "Queue"}))

	data := buildAdaptableData(tst)
	assert.Equal(t, "indeterminate", data.Values["progress"])
	assert.Equal(t, "soon", data.Values["progress_override"])
	assert.Equal(t, "Queue", data.Values["caption"])
}
