package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// audioExtensions lists the file types the desktop open dialog offers.
var audioExtensions = []string{".mp3", ".wav", ".flac"}

// FileDialog is a helper for creating audio file open dialogs.
type FileDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFileDialog creates a new file dialog.
func NewFileDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the file dialog filtered to supported audio files.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		filePath := reader.URI().Path()
		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)
	fd.SetFilter(storage.NewExtensionFileFilter(audioExtensions))
	fd.Show()
}
