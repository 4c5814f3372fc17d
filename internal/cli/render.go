package cli

import "github.com/fatih/color"

var (
	goodFg = color.New(color.FgGreen).SprintFunc()
	warnFg = color.New(color.FgYellow).SprintFunc()
	badFg  = color.New(color.FgRed).SprintFunc()
	dimFg  = color.New(color.Faint).SprintFunc()
)
