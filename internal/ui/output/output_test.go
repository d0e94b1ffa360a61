package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/ptree/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(), "NO_COLOR should force Ascii profile")

	t.Setenv("NO_COLOR", "")
	p := output.ColorProfile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
}

func TestProfileFor(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, termenv.Ascii, output.ProfileFor(output.ColorNever, &buf))
	assert.Equal(t, termenv.Ascii, output.ProfileFor(output.ColorAuto, &buf), "buffers are not terminals")
	assert.NotEqual(t, termenv.Ascii, output.ProfileFor(output.ColorAlways, &buf))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, output.IsTerminal(&bytes.Buffer{}))
	assert.False(t, output.IsTerminal(nil))
}

func TestValidColorMode(t *testing.T) {
	for _, m := range []string{"auto", "always", "never"} {
		assert.True(t, output.ValidColorMode(m), m)
	}
	assert.False(t, output.ValidColorMode("sometimes"))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)
	assert.NotNil(t, out)

	_, _ = out.WriteString("test")
	assert.Equal(t, "test", buf.String())
}

func TestNew_Nil(t *testing.T) {
	out := output.New(nil)
	assert.NotNil(t, out)
}

func TestNewWithProfile(t *testing.T) {
	var buf bytes.Buffer
	out := output.NewWithProfile(&buf, func() termenv.Profile { return termenv.ANSI })
	assert.Equal(t, termenv.ANSI, out.Profile)
}
