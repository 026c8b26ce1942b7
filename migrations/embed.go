// Package migrations embeds the goose SQL migrations for both databases the
// module owns: the client's local storage and the development backend.
package migrations

import "embed"

// Migration directories inside FS.
const (
	LocalDir   = "local"
	MockAPIDir = "mockapi"
)

//go:embed local/*.sql mockapi/*.sql
var FS embed.FS
