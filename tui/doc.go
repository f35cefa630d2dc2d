// Package tui is the interactive front end of devcomp. It stacks one selector
// per navigation level (subscription, resource group, IoT hub, edge device)
// and drives a navigator.Navigator from bubbletea commands.
//
// A selector below the current selection stays disabled until its list has
// been fetched. Choosing a value clears every selector under it before the
// next list is requested, so what is on screen always matches the
// navigator's state.
package tui
