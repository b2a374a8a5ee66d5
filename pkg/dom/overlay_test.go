package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayHTML_Progress(t *testing.T) {
	markup, err := OverlayHTML(Overlay{
		ID:      "ov-1",
		Title:   "Adding title",
		Body:    "Downloading... 42%",
		ShowBar: true,
		Percent: 42,
		Buttons: []OverlayButton{{Choice: ChoiceClose, Label: "Close"}},
	})
	require.NoError(t, err)

	assert.Contains(t, markup, `data-titlepanel-overlay="ov-1"`)
	assert.Contains(t, markup, `width: 42%`)
	assert.Contains(t, markup, `data-titlepanel-choice="close"`)
	assert.Contains(t, markup, "Downloading... 42%")
	assert.NotContains(t, markup, "<input")
}

func TestOverlayHTML_ClampsPercent(t *testing.T) {
	markup, err := OverlayHTML(Overlay{ID: "x", ShowBar: true, Percent: 180})
	require.NoError(t, err)
	assert.Contains(t, markup, `width: 100%`)
}

func TestBuildOverlay_Credentials(t *testing.T) {
	n := BuildOverlay(Overlay{
		ID:          "creds",
		Title:       "Sign in",
		Credentials: true,
		Buttons: []OverlayButton{
			{Choice: ChoiceSubmit, Label: "Save"},
			{Choice: ChoiceCancel, Label: "Cancel"},
		},
	})

	assert.NotNil(t, MustCompile("input[name=username]").First(n))
	assert.NotNil(t, MustCompile("input[name=password][type=password]").First(n))
	submit := MustCompile("[data-titlepanel-choice=submit]").First(n)
	require.NotNil(t, submit)
	assert.Equal(t, "Save", textContent(submit))
}
