package screen

import (
	"os"
	"path"
	"time"

	devicons "github.com/epilande/go-devicons"
)

type iconFileInfo struct {
	name string
}

func (i iconFileInfo) Name() string       { return i.name }
func (i iconFileInfo) Size() int64        { return 0 }
func (i iconFileInfo) Mode() os.FileMode  { return 0 }
func (i iconFileInfo) ModTime() time.Time { return time.Time{} }
func (i iconFileInfo) IsDir() bool        { return false }
func (i iconFileInfo) Sys() any           { return nil }

// FileIcon returns the Nerd Font glyph for a repository path, or "".
func FileIcon(file string) string {
	name := path.Base(file)
	if file == "" || name == "." || name == "/" {
		return ""
	}
	return devicons.IconForInfo(iconFileInfo{name: name}).Icon
}

// FileLabel prefixes file with its icon when icons are enabled.
func FileLabel(file string, showIcons bool) string {
	if !showIcons {
		return file
	}
	if icon := FileIcon(file); icon != "" {
		return icon + " " + file
	}
	return file
}
