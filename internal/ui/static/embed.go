package static

import "embed"

// FS holds the dashboard's stylesheet and chart script.
//
//go:embed dashboard.css dashboard.js
var FS embed.FS
