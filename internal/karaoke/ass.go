package karaoke

import (
	"fmt"
	"math"
	"os"
	"strings"
)

// Style controls the font embedded in the rendered track.
type Style struct {
	FontName string
	FontSize int
}

// ASS colours are &HAABBGGRR, the reverse of RGB.
const (
	colourYellow  = "&H0000FFFF" // word being spoken
	colourWhite   = "&H00FFFFFF" // words not yet spoken
	colourOutline = "&H00000000"
	colourShadow  = "&HA0000000"
)

var assEscaper = strings.NewReplacer("{", "\\{", "}", "\\}")

// RenderASS builds the complete ASS file contents for the given entries.
// Words highlight sequentially in yellow while the rest of the line stays
// white.
func RenderASS(entries []Entry, style Style) string {
	if style.FontName == "" {
		style.FontName = "Arial"
	}
	if style.FontSize <= 0 {
		style.FontSize = 54
	}

	var b strings.Builder
	b.WriteString("\ufeff")
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", CanvasWidth)
	fmt.Fprintf(&b, "PlayResY: %d\n", CanvasHeight)
	b.WriteString("ScaledBorderAndShadow: yes\n")
	b.WriteString("WrapStyle: 1\n")
	b.WriteString("\n")
	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, " +
		"OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, " +
		"ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, " +
		"Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b, "Style: Default,%s,%d,%s,%s,%s,%s,-1,0,0,0,100,100,0,0,1,3,1,2,30,30,%d,1\n",
		style.FontName, style.FontSize,
		colourYellow, colourWhite, colourOutline, colourShadow, marginV)
	b.WriteString("\n")
	b.WriteString("[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, entry := range entries {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s",
			secondsToASS(entry.Start), secondsToASS(entry.End), karaokeText(entry))
	}

	return b.String()
}

// WriteFile renders entries to path. Returns false with no error when
// there is nothing to write.
func WriteFile(entries []Entry, path string, style Style) (bool, error) {
	if len(entries) == 0 {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(RenderASS(entries, style)), 0644); err != nil {
		return false, fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return true, nil
}

// karaokeText builds the \k-tagged dialogue text for one entry. The last
// word absorbs whatever display time the per-word durations leave over,
// so the highlight spans the entry exactly.
func karaokeText(entry Entry) string {
	entryDurCS := int(math.Round((entry.End - entry.Start) * 100))
	usedCS := 0

	parts := make([]string, 0, len(entry.WordTimings))
	for i, wt := range entry.WordTimings {
		durCS := int(math.Round(wt.Duration * 100))
		if i == len(entry.WordTimings)-1 && entryDurCS-usedCS > durCS {
			durCS = entryDurCS - usedCS
		}
		usedCS += durCS
		parts = append(parts, fmt.Sprintf("{\\k%d}%s", durCS, assEscaper.Replace(wt.Word)))
	}
	return strings.Join(parts, " ")
}

// secondsToASS renders an H:MM:SS.CC timestamp.
func secondsToASS(s float64) string {
	if s < 0 {
		s = 0
	}
	cs := int(math.Round(s * 100))
	return fmt.Sprintf("%d:%02d:%02d.%02d",
		cs/360000, cs%360000/6000, cs%6000/100, cs%100)
}

// VFFilter builds the ffmpeg -vf fragment that burns the track in.
// fontsDir is optional; when it names a directory libass uses it to
// resolve the style's font.
func VFFilter(assPath, fontsDir string) string {
	safe := filterPath(assPath)
	if fontsDir != "" {
		if info, err := os.Stat(fontsDir); err == nil && info.IsDir() {
			return fmt.Sprintf("ass='%s':fontsdir='%s'", safe, filterPath(fontsDir))
		}
	}
	return fmt.Sprintf("ass='%s'", safe)
}

// filterPath makes a path safe inside an ffmpeg filter string. Windows
// drive-letter colons must be escaped or the filter parser splits on
// them.
func filterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if len(path) >= 2 && path[1] == ':' {
		path = path[:1] + "\\:" + path[2:]
	}
	return path
}
