// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building a wedding video:
//  1. [FormView] : Enter the couple's details and pick the photo
//  2. [UploadView] : Upload the photo to the backend
//  3. [GenerateView] : Monitor poster, polaroid and couple video generation
//  4. [AssembleView] : Compose the final video
//  5. [ResultView] : Play the result and deliver it by email or WhatsApp
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the generation Engine, providing
// non-blocking status reporting during long-running backend calls.
//
// Keyboard navigation uses vim-style bindings (tab, enter, esc, q) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
