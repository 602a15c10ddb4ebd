package buildconfig

import "strings"

// AssetKind identifies a category of source file.
type AssetKind string

const (
	Script     AssetKind = "script"
	Stylesheet AssetKind = "stylesheet"
	Sass       AssetKind = "sass"
	Image      AssetKind = "image"
	Font       AssetKind = "font"
)

// Ext returns the output extension for kinds that compile to a fixed
// extension, or "" for kinds that keep their source extension.
func (k AssetKind) Ext() string {
	switch k {
	case Script:
		return "js"
	case Stylesheet, Sass:
		return "css"
	default:
		return ""
	}
}

// Placeholders understood in a FilenamePattern.
const (
	NameToken = "[name]"
	HashToken = "[contenthash]"
	ExtToken  = "[ext]"
)

// FilenamePattern is an output file name template such as "[name].[contenthash].js".
type FilenamePattern string

// HasHash reports whether the pattern carries a content hash segment.
func (p FilenamePattern) HasHash() bool {
	return strings.Contains(string(p), HashToken)
}

// Expand substitutes the placeholders of the pattern.
func (p FilenamePattern) Expand(name, hash, ext string) string {
	return strings.NewReplacer(
		NameToken, name,
		HashToken, hash,
		ExtToken, ext,
	).Replace(string(p))
}

// ResolveFilenamePattern returns the output name template for kind. Production
// patterns embed a content hash for cache busting; development patterns stay
// stable across rebuilds. Unknown kinds get the generic "[ext]" form.
func ResolveFilenamePattern(mode Mode, kind AssetKind) FilenamePattern {
	ext := kind.Ext()
	if ext == "" {
		ext = ExtToken
	}

	if mode.IsDevelopment() {
		return FilenamePattern(NameToken + "." + ext)
	}
	return FilenamePattern(NameToken + "." + HashToken + "." + ext)
}
