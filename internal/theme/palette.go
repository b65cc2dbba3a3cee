package theme

// Palette holds the ANSI escape sequences used when rendering chat output.
type Palette struct {
	User      string
	Assistant string
	Notice    string
	Error     string
	Dim       string
	Reset     string
}

var (
	darkPalette = Palette{
		User:      "\033[1;96m", // bright cyan
		Assistant: "\033[0;95m", // magenta
		Notice:    "\033[1;93m", // bright yellow
		Error:     "\033[1;91m", // bright red
		Dim:       "\033[2m",
		Reset:     "\033[0m",
	}
	lightPalette = Palette{
		User:      "\033[1;34m", // blue
		Assistant: "\033[0;35m", // magenta
		Notice:    "\033[0;33m", // yellow
		Error:     "\033[0;31m", // red
		Dim:       "\033[2m",
		Reset:     "\033[0m",
	}
)

// Palette returns the escape sequences for the active theme.
func (c *Controller) Palette() Palette {
	if c.active == Light {
		return lightPalette
	}
	return darkPalette
}
