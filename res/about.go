package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `A music player with a live stereo spectrum, built with Go and Fyne.

**Features:**
- Play MP3, WAV and FLAC from local files or http(s) URLs
- Seven spectrum styles (bars, dots, scapes and lines)
- Track catalog from a JSON file or URL
- Desktop and terminal front ends
`
