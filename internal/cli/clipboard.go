package cli

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/perimeter/pkg/render"
)

// copyFormats lists the clipboard-friendly formats in preference order.
var copyFormats = []string{render.FormatSVG, render.FormatText}

// pickCopyFormat returns the first rendered format that can go on the
// clipboard as text.
func pickCopyFormat(formats []string) (string, bool) {
	for _, want := range copyFormats {
		for _, f := range formats {
			if f == want {
				return f, true
			}
		}
	}
	return "", false
}

// copyOutput puts a text artifact on the system clipboard. Failure is only
// a warning: the files are already written.
func copyOutput(logger *log.Logger, formats []string, artifacts map[string][]byte) {
	format, ok := pickCopyFormat(formats)
	if !ok {
		printWarning("Nothing to copy: only svg and txt output can go on the clipboard")
		return
	}
	if clipboard.Unsupported {
		printWarning("Clipboard is not available on this system")
		return
	}
	if err := clipboard.WriteAll(string(artifacts[format])); err != nil {
		logger.Debug("clipboard write failed", "error", err)
		printWarning("Could not copy to the clipboard: %v", err)
		return
	}
	printInfo("Copied %s output to the clipboard", format)
}
