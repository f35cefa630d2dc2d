package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette of the selectors and chrome. ANSI 256 codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color
	ChosenForeground   lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	FocusBorderColor lipgloss.Color
	HelpText         lipgloss.Color

	ErrorForeground  lipgloss.Color
	PromptBorder     lipgloss.Color
	PromptCodeAccent lipgloss.Color
}

// DefaultTheme suits a dark 256-color terminal.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("240"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),
	ChosenForeground:   lipgloss.Color("114"), // green

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	FocusBorderColor: lipgloss.Color("75"), // blue
	HelpText:         lipgloss.Color("241"),

	ErrorForeground:  lipgloss.Color("196"),
	PromptBorder:     lipgloss.Color("220"), // amber
	PromptCodeAccent: lipgloss.Color("220"),
}
