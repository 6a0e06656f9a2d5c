package gateway

import _ "embed"

// WidgetJS is the embeddable chat widget script served at
// /chat/widget.js. Sites include it with a single script tag.
//
//go:embed web/widget.js
var WidgetJS []byte
