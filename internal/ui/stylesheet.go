package ui

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"sync"

	"crash-dash/internal/ui/assets"
)

const stylesheetPath = "/static/css/app.css"

var (
	stylesheetOnce sync.Once
	stylesheetHref = stylesheetPath
)

// uiStylesheetHref returns the stylesheet URL with a content hash appended,
// so browsers pick up a new stylesheet after each deploy.
func uiStylesheetHref() string {
	stylesheetOnce.Do(func() {
		b, err := fs.ReadFile(assets.StaticFS(), "static/css/app.css")
		if err != nil {
			return
		}
		sum := sha256.Sum256(b)
		stylesheetHref = stylesheetPath + "?v=" + hex.EncodeToString(sum[:])[:12]
	})
	return stylesheetHref
}
