// Package docs embeds the OpenAPI description served under /docs/swagger.yml.
package docs

import "embed"

//go:embed swagger.yml
var FS embed.FS
