package api

import "fmt"

// MaxQuality is the highest quality level the vendor exposes.
const MaxQuality = 4

// formatIDs maps quality levels 1..4 to the vendor's format ids.
var formatIDs = [...]int{5, 6, 7, 27}

var formatLabels = map[int]string{
	5:  "MP3 320",
	6:  "FLAC 16-bit / 44.1 kHz",
	7:  "FLAC 24-bit",
	27: "FLAC 24-bit Hi-Res",
}

// FormatID maps a quality level (1..4) to the vendor format id.
func FormatID(quality int) (int, error) {
	if quality < 1 || quality > MaxQuality {
		return 0, fmt.Errorf("quality level out of range: %d", quality)
	}
	return formatIDs[quality-1], nil
}

// FormatLabel returns a human-readable description for a vendor format id.
func FormatLabel(formatID int) string {
	if label, ok := formatLabels[formatID]; ok {
		return label
	}
	return "Unknown"
}
