// Package scripts embeds the Risor query scripts shipped with the
// typegraph CLI.
package scripts

import "embed"

//go:embed *.risor
var FS embed.FS
