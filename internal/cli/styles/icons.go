package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconGlobe    = "\uf0ac" // browser/web
	IconCheck    = "\uf00c" // check
	IconX        = "\uf00d" // x
	IconWarning  = "\uf071" // warning
	IconInfo     = "\uf05a" // info
	IconConfig   = "\ue615" // config
	IconFolder   = "\uf07b" // folder
	IconImage    = "\uf1c5" // image file
	IconDownload = "\uf019" // download
	IconEye      = "\uf06e" // display inline
	IconCursor   = "\uf054" // chevron-right
)
