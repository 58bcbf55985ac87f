package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRoundTrip(t *testing.T) {
	events := []Event{
		WindowResized{Width: 800, Height: 600},
		MouseClick{X: 12.5, Y: 3},
		MouseMove{X: 0, Y: 99.25},
		KeyPress{Key: "a", Modifiers: Modifiers{Shift: true, Meta: true}},
		KeyRelease{Key: "enter", Modifiers: Modifiers{Ctrl: true, Alt: true}},
		TextInput{Text: "héllo \"quoted\"\n"},
		WidgetAction{WidgetID: "btn1", Action: Click()},
		WidgetAction{WidgetID: "btn1", Action: DoubleClick()},
		WidgetAction{WidgetID: "in", Action: TextChanged(`back\slash	tab`)},
		WidgetAction{WidgetID: "in", Action: TextChanged("")},
		WidgetAction{WidgetID: "s", Action: ValueChanged(0.5)},
		WidgetAction{WidgetID: "s", Action: ValueChanged(0)},
		WidgetAction{WidgetID: "c", Action: CustomAction("submit")},
		WindowFocusChanged{Focused: true},
		WindowFocusChanged{Focused: false},
		WindowCloseRequested{},
		AppExit{},
		Disconnected{},
	}

	for _, ev := range events {
		t.Run(ev.Type(), func(t *testing.T) {
			data, err := EncodeEvent(ev)
			require.NoError(t, err)

			var obj map[string]any
			require.NoError(t, json.Unmarshal([]byte(data), &obj), data)
			assert.Equal(t, ev.Type(), obj["type"])

			back, err := DecodeEvent(data)
			require.NoError(t, err)
			assert.Equal(t, ev, back)
		})
	}
}

func TestEncodeValueChanged(t *testing.T) {
	data, err := EncodeEvent(WidgetAction{WidgetID: "vol", Action: ValueChanged(0.5)})
	require.NoError(t, err)
	assert.Contains(t, data, `"action":"valueChanged","value":0.5`)
	assert.Equal(t, `{"type":"widgetAction","widgetId":"vol","action":"valueChanged","value":0.5}`, data)
}

func TestEncodeKeyPressKeepsFalseModifiers(t *testing.T) {
	data, err := EncodeEvent(KeyPress{Key: "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"keyPress","key":"x","shift":false,"ctrl":false,"alt":false,"meta":false}`, data)
}

func TestEncodeEscapesStrings(t *testing.T) {
	data, err := EncodeEvent(WidgetAction{WidgetID: "a\"b\\c\nd\x01<e>", Action: Click()})
	require.NoError(t, err)
	assert.Contains(t, data, `"widgetId":"a\"b\\c\nd\u0001<e>"`)
}

func TestDisconnectedSentinel(t *testing.T) {
	data, err := EncodeEvent(Disconnected{})
	require.NoError(t, err)
	assert.Equal(t, DisconnectedJSON, data)
	assert.True(t, IsDisconnected(data))
	assert.False(t, IsDisconnected(`{"type":"appExit"}`))
	assert.False(t, IsDisconnected(`not json`))
}

func TestDecodeEventRejectsBadInput(t *testing.T) {
	for name, data := range map[string]string{
		"unknown type":        `{"type":"teleport"}`,
		"missing widget id":   `{"type":"widgetAction","action":"click"}`,
		"unknown action":      `{"type":"widgetAction","widgetId":"a","action":"poke"}`,
		"value type mismatch": `{"type":"widgetAction","widgetId":"a","action":"valueChanged","value":"x"}`,
		"malformed":           `{"type":`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEvent(data)
			assert.Error(t, err)
		})
	}

	_, err := DecodeEvent(`{"type":"teleport"}`)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want WidgetKind
	}{
		{"Label", Kind(TagLabel)},
		{"label", Kind(TagLabel)},
		{"TextInput", Kind(TagTextInput)},
		{"textInput", Kind(TagTextInput)},
		{"text_input", Kind(TagTextInput)},
		{"text_area", Kind(TagTextArea)},
		{"Container", Kind(TagContainer)},
		{"flex", Kind(TagFlex)},
		{"progress_bar", Kind(TagProgressBar)},
		{"zstack", Kind(TagZStack)},
		{"Gauge", Custom("Gauge")},
		{"", Custom("")},
	}
	for _, tt := range tests {
		got := ParseKind(tt.in)
		assert.Equal(t, tt.want, got, "ParseKind(%q)", tt.in)
	}

	assert.Equal(t, "Custom(Gauge)", Custom("Gauge").String())
	assert.Equal(t, "TextArea", Kind(TagTextArea).String())
	assert.True(t, Custom("x").IsCustom())
	assert.True(t, Kind(TagFlex).Container())
	assert.False(t, Kind(TagLabel).Container())
}

func TestSuggestKind(t *testing.T) {
	got, ok := SuggestKind("Buton")
	require.True(t, ok)
	assert.Equal(t, "Button", got)

	got, ok = SuggestKind("chekbox")
	require.True(t, ok)
	assert.Equal(t, "Checkbox", got)

	_, ok = SuggestKind("completely-unrelated")
	assert.False(t, ok)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLogLevel("info"))
	assert.Equal(t, LevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LevelError, ParseLogLevel("error"))
	assert.Equal(t, LevelInfo, ParseLogLevel("verbose"))
	assert.Equal(t, "warn", LevelWarn.String())
}

func TestDecodeOptions(t *testing.T) {
	opts, unused, err := DecodeOptions(map[string]any{
		"text": "Go",
		"style": map[string]any{
			"color":     "#ff0000",
			"padding":   []any{1.0, 2.0, 1.0, 2.0},
			"bold":      true,
			"direction": "row",
		},
		"data": map[string]any{
			"min":   0.0,
			"max":   int64(10),
			"value": 2.5,
		},
		"colour": "typo",
	})
	require.NoError(t, err)

	require.NotNil(t, opts.Text)
	assert.Equal(t, "Go", *opts.Text)
	require.NotNil(t, opts.Style)
	assert.Equal(t, "#ff0000", opts.Style.Color)
	assert.Equal(t, []int{1, 2, 1, 2}, opts.Style.Padding)
	assert.True(t, opts.Style.Bold)
	require.NotNil(t, opts.Data)
	assert.Equal(t, 10.0, Float(opts.Data.Max, 0))
	assert.Equal(t, 2.5, Float(opts.Data.Value, 0))
	assert.Nil(t, opts.Data.Step)
	assert.Equal(t, []string{"colour"}, unused)
}

func TestDecodeOptionsEmpty(t *testing.T) {
	opts, unused, err := DecodeOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, opts.Text)
	assert.Nil(t, opts.Style)
	assert.Empty(t, unused)
}

func TestEventSchema(t *testing.T) {
	data, err := EventSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "type")
	assert.Contains(t, props, "widgetId")
	assert.Contains(t, props, "value")
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "CreateWidget", CommandName(CreateWidget{ID: "x"}))
	assert.Equal(t, "ExitApp", CommandName(ExitApp{}))
}
