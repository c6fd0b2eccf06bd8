package windows

import (
	"log"
	"os/exec"
	"runtime"
)

// BrowserOpener opens viewer windows through the desktop's default browser.
// Placement hints are best-effort only; a browser launched this way decides
// its own geometry.
type BrowserOpener struct{}

func (BrowserOpener) Open(g Geometry) (Window, error) {
	return &browserWindow{geom: g}, nil
}

type browserWindow struct {
	geom Geometry
}

// ShowPlaceholder has nowhere to render before a URL exists; it only logs so
// the operator sees the interim state in the terminal.
func (w *browserWindow) ShowPlaceholder(message string) {
	log.Printf("window (%dx%d): %s", w.geom.Width, w.geom.Height, message)
}

func (w *browserWindow) Navigate(rawURL string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("failed to open browser window: %v", err)
	}
}
