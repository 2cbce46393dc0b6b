package parking

// Palette colors used across the app
const (
	Turquoise      = "#40E0D0"
	White          = "#FFFFFF"
	Black          = "#000000"
	Gray           = "#808080"
	LightGray      = "#F5F5F5"
	DarkGray       = "#333333"
	Background     = "#FFFFFF"
	CardBackground = "#F8F9FA"
	PrimaryText    = "#000000"
	SecondaryText  = "#666666"
	WhiteText      = "#FFFFFF"
	Border         = "#E0E0E0"
	Success        = "#28A745"
	Error          = "#DC3545"
	Warning        = "#FFC107"
)

// Palette returns the named colors as a map for clients that theme themselves
func Palette() map[string]string {
	return map[string]string{
		"turquoise":      Turquoise,
		"white":          White,
		"black":          Black,
		"gray":           Gray,
		"lightGray":      LightGray,
		"darkGray":       DarkGray,
		"background":     Background,
		"cardBackground": CardBackground,
		"primaryText":    PrimaryText,
		"secondaryText":  SecondaryText,
		"whiteText":      WhiteText,
		"border":         Border,
		"success":        Success,
		"error":          Error,
		"warning":        Warning,
	}
}
