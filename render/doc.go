// Package render expands output formats for computed integrity
// values. A format is either a preset name (integrity, script, link)
// or a template with single-brace {var} placeholders such as {url} and
// {integrity}. Unknown placeholders are preserved as-is.
package render
