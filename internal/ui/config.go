package ui

// Config contains window and viewer settings.
type Config struct {
	Title  string // window title
	Width  int    // logical screen size
	Height int
	Scale  int // window size multiplier

	StepsPerFrame int    // commands decoded per update
	CapturesDir   string // directory browsed for captures and scripts
	StateDir      string // where save-state slots live
	Overlay       bool   // status bar on start
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "rsxplay"
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = 640, 360
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
	if c.StepsPerFrame <= 0 {
		c.StepsPerFrame = 4096
	}
	if c.CapturesDir == "" {
		c.CapturesDir = "captures"
	}
	if c.StateDir == "" {
		c.StateDir = "."
	}
}
