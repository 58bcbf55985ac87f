package protocol

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Tag identifies a widget kind in the closed kind enumeration.
type Tag uint8

const (
	TagLabel Tag = iota + 1
	TagButton
	TagContainer
	TagFlex
	TagTextInput
	TagTextArea
	TagCheckbox
	TagSlider
	TagImage
	TagVideo
	TagSvg
	TagSizedBox
	TagProse
	TagProgressBar
	TagSpinner
	TagZStack
	TagPortal
	TagGrid
	TagHoverable
	// TagCustom carries a script-chosen name in WidgetKind.Name.
	TagCustom
)

var tagNames = map[Tag]string{
	TagLabel:       "Label",
	TagButton:      "Button",
	TagContainer:   "Container",
	TagFlex:        "Flex",
	TagTextInput:   "TextInput",
	TagTextArea:    "TextArea",
	TagCheckbox:    "Checkbox",
	TagSlider:      "Slider",
	TagImage:       "Image",
	TagVideo:       "Video",
	TagSvg:         "Svg",
	TagSizedBox:    "SizedBox",
	TagProse:       "Prose",
	TagProgressBar: "ProgressBar",
	TagSpinner:     "Spinner",
	TagZStack:      "ZStack",
	TagPortal:      "Portal",
	TagGrid:        "Grid",
	TagHoverable:   "Hoverable",
}

// byFolded maps lower-case, underscore-free names to tags so that
// "TextInput", "textInput" and "text_input" all resolve to the same kind.
var byFolded = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for tag, name := range tagNames {
		m[foldKindName(name)] = tag
	}
	return m
}()

// sortedNames keeps SuggestKind deterministic.
var sortedNames = func() []string {
	names := make([]string, 0, len(tagNames))
	for _, name := range tagNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// WidgetKind is a tag from the closed kind enumeration. Custom kinds keep
// the name the script used.
type WidgetKind struct {
	Tag  Tag
	Name string
}

// Kind returns the built-in kind for tag.
func Kind(tag Tag) WidgetKind {
	return WidgetKind{Tag: tag}
}

// Custom returns a custom kind with the given name.
func Custom(name string) WidgetKind {
	return WidgetKind{Tag: TagCustom, Name: name}
}

// ParseKind resolves a kind name. Names that match no built-in kind become
// Custom(name); parsing never fails.
func ParseKind(name string) WidgetKind {
	if tag, ok := byFolded[foldKindName(name)]; ok {
		return Kind(tag)
	}
	return Custom(name)
}

// IsCustom reports whether k is a Custom kind.
func (k WidgetKind) IsCustom() bool { return k.Tag == TagCustom }

// String returns the canonical kind name ("Custom(name)" for custom kinds).
func (k WidgetKind) String() string {
	if k.Tag == TagCustom {
		return "Custom(" + k.Name + ")"
	}
	if name, ok := tagNames[k.Tag]; ok {
		return name
	}
	return "Unknown"
}

// Container reports whether the kind lays out children.
func (k WidgetKind) Container() bool {
	switch k.Tag {
	case TagContainer, TagFlex, TagButton, TagSizedBox, TagZStack, TagPortal, TagGrid, TagHoverable:
		return true
	}
	return false
}

// SuggestKind returns the built-in kind name closest to name, for
// diagnostics about unrecognized kinds. ok is false when nothing is close.
func SuggestKind(name string) (string, bool) {
	folded := foldKindName(name)
	if folded == "" {
		return "", false
	}

	best, bestDist := "", 3
	for _, candidate := range sortedNames {
		if d := levenshtein.ComputeDistance(folded, foldKindName(candidate)); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, best != ""
}

func foldKindName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}
