package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Disabled(t *testing.T) {
	var buf bytes.Buffer
	c := NewCounter("Analyzing", false)
	c.SetOutput(&buf)
	c.SetEvery(1)

	c.Increment()
	c.Increment()
	c.Done("")

	assert.Empty(t, buf.String())
	assert.Equal(t, 2, c.Current())
	assert.False(t, c.Enabled())
}

func TestCounter_RedrawsEveryN(t *testing.T) {
	var buf bytes.Buffer
	c := NewCounter("Analyzing", true)
	c.SetOutput(&buf)
	c.SetEvery(2)

	c.Increment()
	assert.Empty(t, buf.String())

	c.Increment()
	assert.Equal(t, "\rAnalyzing... 2 events", buf.String())

	c.Increment()
	c.Increment()
	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\rAnalyzing... 4 events"))
	// The previous line is blanked before redrawing.
	assert.Contains(t, out, "\r"+strings.Repeat(" ", len("Analyzing... 2 events"))+"\r")
}

func TestCounter_DoneSummary(t *testing.T) {
	var buf bytes.Buffer
	c := NewCounter("Analyzing", true)
	c.SetOutput(&buf)
	c.SetEvery(100)

	for i := 0; i < 3; i++ {
		c.Increment()
	}
	c.Done("")
	assert.Equal(t, "\rAnalyzing complete (3 events)\n", buf.String())
}

func TestCounter_DoneMessage(t *testing.T) {
	var buf bytes.Buffer
	c := NewCounter("Analyzing", true)
	c.SetOutput(&buf)

	c.Done("fertig")
	assert.Equal(t, "\rfertig\n", buf.String())
}

func TestCounter_SetEveryClamps(t *testing.T) {
	var buf bytes.Buffer
	c := NewCounter("x", true)
	c.SetOutput(&buf)
	c.SetEvery(0)

	c.Increment()
	assert.Equal(t, "\rx... 1 events", buf.String())
}
