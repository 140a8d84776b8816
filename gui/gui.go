package gui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"udsserver/services"
	"udsserver/uds"
)

const (
	windowName     = "uds diagnostics monitor"
	maxLogCharsLen = 8192
	pollInterval   = 200 * time.Millisecond
)

// GUI is a live status monitor for a running uds.Server: session type,
// security level, transfer progress, and a scrolling log pane. It has
// no say over the server itself — it only reads Server.Status() and
// Server.TransferInProgress() on a ticker.
type GUI struct {
	app    fyne.App
	window fyne.Window

	isRunning  bool
	autoScroll bool

	logScrollContainer *container.Scroll
	logLabel           *widget.Label
	statusLabel        *widget.Label
}

func RegisterGUI() *GUI {
	g := &GUI{}
	services.Register(services.ServiceGUI, g)
	return g
}

func (g *GUI) Start(ctx context.Context) *GUI {
	g.autoScroll = true
	g.app = app.New()
	g.app.Settings().SetTheme(MonitorTheme{})

	g.statusLabel = widget.NewLabel("")
	g.logLabel = widget.NewLabel("")
	g.logLabel.Wrapping = fyne.TextWrapWord
	g.logScrollContainer = container.NewVScroll(g.logLabel)
	g.logScrollContainer.SetMinSize(fyne.NewSize(500, 300))

	g.logScrollContainer.OnScrolled = func(offset fyne.Position) {
		if offset.Y+g.logScrollContainer.Size().Height >= g.logScrollContainer.Content.Size().Height-20 {
			g.autoScroll = true
		} else {
			g.autoScroll = false
		}
	}

	content := container.NewBorder(g.statusLabel, nil, nil, nil, g.logScrollContainer)

	g.window = g.app.NewWindow(windowName)
	g.window.SetContent(content)
	g.window.Resize(fyne.NewSize(640, 420))

	g.isRunning = true
	go g.pollServerStatus(ctx)

	g.window.ShowAndRun()
	return g
}

func (g *GUI) pollServerStatus(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv, ok := services.Get(services.ServiceServer).(*uds.Server)
			if !ok || srv == nil {
				continue
			}
			status := srv.Status()
			text := fmt.Sprintf("session: %v  security level: %d  RCRRP: %v  transfer active: %v",
				status.SessionType, status.SecurityLevel, status.RCRRP, srv.TransferInProgress())
			g.statusLabel.SetText(text)
		}
	}
}

func (g *GUI) WriteToLog(in string) {
	if !g.isRunning {
		return
	}

	newLabelText := g.logLabel.Text + in + "\n"
	runes := []rune(newLabelText)
	if len(runes) > maxLogCharsLen {
		runes = runes[len(runes)-maxLogCharsLen:]
		newLabelText = string(runes)
	}
	g.logLabel.SetText(newLabelText)

	if g.autoScroll {
		g.logScrollContainer.ScrollToBottom()
	}
}
