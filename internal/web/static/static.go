// Package static embeds the assets served under /static/.
package static

import "embed"

//go:embed style.css no-image.png
var FS embed.FS
