package comicshelf

import "embed"

// EmbeddedAssets holds the assets shipped with the binary: styles.css and
// reader.js. They are served under /public/ ahead of the static directory.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
