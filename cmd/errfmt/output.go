package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chameleon-db/errfmt/pkg/errfmt"
	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgRed, color.Bold)
	blockColor  = color.New(color.FgYellow)
	labelColor  = color.New(color.FgCyan)
)

var detailLabels = []string{"Constraint", "Table", "Fields", "Detail", "SQL", "Original Error"}

func printInfo(format string, args ...interface{}) {
	if !verbose {
		return
	}
	color.New(color.FgCyan).Fprint(os.Stderr, "ℹ ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprint(os.Stderr, "✓ ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "✗ ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// highlight colors formatted error text. The text is unchanged when
// colors are disabled.
func highlight(text string) string {
	if color.NoColor {
		return text
	}

	lines := strings.Split(text, "\n")
	inDetails := false
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = headerColor.Sprint(line)
		case line == errfmt.DetailsHeader:
			lines[i] = blockColor.Sprint(line)
			inDetails = true
		case inDetails && strings.HasPrefix(line, "  "):
			lines[i] = highlightLabel(line)
		default:
			inDetails = false
		}
	}
	return strings.Join(lines, "\n")
}

func highlightLabel(line string) string {
	for _, label := range detailLabels {
		prefix := "  " + label + ":"
		if strings.HasPrefix(line, prefix) {
			return "  " + labelColor.Sprint(label+":") + line[len(prefix):]
		}
	}
	return line
}
