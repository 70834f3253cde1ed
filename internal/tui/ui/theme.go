package ui

import "github.com/gdamore/tcell/v2"

// Theme holds the TUI palette.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color

	TableHeaderFg tcell.Color
	TableHeaderBg tcell.Color
	TableCursorFg tcell.Color
	TableCursorBg tcell.Color

	CrumbActiveFg   tcell.Color
	CrumbActiveBg   tcell.Color
	CrumbInactiveFg tcell.Color
	CrumbInactiveBg tcell.Color

	MenuKeyColor    tcell.Color
	NumericKeyColor tcell.Color
	TitleColor      tcell.Color
	CounterColor    tcell.Color

	FlashInfoColor tcell.Color
	FlashWarnColor tcell.Color
	FlashErrColor  tcell.Color

	PromptBorderColor tcell.Color

	// Message thread.
	SenderColor     tcell.Color
	SelfSenderColor tcell.Color
	UnresolvedColor tcell.Color
	TimestampColor  tcell.Color

	// Live feed indicator in the header.
	LiveColor     tcell.Color
	LoadingColor  tcell.Color
	DegradedColor tcell.Color
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorLightGray,
		BorderColor:      tcell.ColorTeal,
		BorderFocusColor: tcell.ColorAqua,

		TableHeaderFg: tcell.ColorWhite,
		TableHeaderBg: tcell.ColorBlack,
		TableCursorFg: tcell.ColorBlack,
		TableCursorBg: tcell.ColorMediumTurquoise,

		CrumbActiveFg:   tcell.ColorBlack,
		CrumbActiveBg:   tcell.ColorGold,
		CrumbInactiveFg: tcell.ColorBlack,
		CrumbInactiveBg: tcell.ColorMediumTurquoise,

		MenuKeyColor:    tcell.ColorTeal,
		NumericKeyColor: tcell.ColorOrchid,
		TitleColor:      tcell.ColorGold,
		CounterColor:    tcell.ColorWhite,

		FlashInfoColor: tcell.ColorLightGreen,
		FlashWarnColor: tcell.ColorOrange,
		FlashErrColor:  tcell.ColorOrangeRed,

		PromptBorderColor: tcell.ColorGold,

		SenderColor:     tcell.ColorMediumTurquoise,
		SelfSenderColor: tcell.ColorGold,
		UnresolvedColor: tcell.ColorGray,
		TimestampColor:  tcell.ColorGray,

		LiveColor:     tcell.ColorLightGreen,
		LoadingColor:  tcell.ColorGold,
		DegradedColor: tcell.ColorOrange,
	}
}

// ColorTag returns c as a tview color tag value.
func ColorTag(c tcell.Color) string {
	return colorName(c)
}
