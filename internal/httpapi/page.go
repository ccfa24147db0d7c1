package httpapi

import _ "embed"

// Status page served at GET /.
//
//go:embed index.html
var indexHTML []byte
