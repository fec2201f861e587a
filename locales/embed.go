package locales

import "embed"

// FS holds the UI message tables, one <lang>.json per language.
//
//go:embed *.json
var FS embed.FS
