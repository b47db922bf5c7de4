package render

import (
	"sort"
	"strconv"

	"github.com/valyala/fasttemplate"
)

// Values are the substitutions available to a format.
type Values struct {
	URL       string
	Algorithm string
	Digest    string
	Integrity string
	Size      int
	// Extra holds caller-supplied variables. Built-in
	// names win on conflict.
	Extra map[string]string
}

// DefaultPreset is the format used when none is given.
const DefaultPreset = "integrity"

var presets = map[string]string{
	"integrity": "{integrity}",
	"script":    `<script src="{url}" integrity="{integrity}" crossorigin="anonymous"></script>`,
	"link":      `<link rel="stylesheet" href="{url}" integrity="{integrity}" crossorigin="anonymous">`,
}

// Presets returns the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Template resolves a format to its template text. Preset
// names map to their template; anything else is returned
// unchanged. An empty format selects DefaultPreset.
func Template(format string) string {
	if format == "" {
		format = DefaultPreset
	}

	if tpl, ok := presets[format]; ok {
		return tpl
	}

	return format
}

// Render expands format against vals.
func Render(format string, vals Values) string {
	return fasttemplate.ExecuteStringStd(
		Template(format), "{", "}", vals.tags(),
	)
}

func (vals Values) tags() map[string]interface{} {
	tags := make(map[string]interface{}, len(vals.Extra)+5)

	for key, val := range vals.Extra {
		tags[key] = val
	}

	tags["url"] = vals.URL
	tags["algorithm"] = vals.Algorithm
	tags["digest"] = vals.Digest
	tags["integrity"] = vals.Integrity
	tags["size"] = strconv.Itoa(vals.Size)

	return tags
}
