package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func success(msg string) {
	fmt.Println(color.GreenString("✓") + " " + msg)
}

func warn(msg string) {
	fmt.Fprintln(os.Stderr, color.YellowString("!")+" "+msg)
}

func failure(msg string) {
	fmt.Fprintln(os.Stderr, color.RedString("✗")+" "+msg)
}

func hint(msg string) {
	fmt.Fprintln(os.Stderr, color.CyanString("→")+" "+msg)
}

// formatSize formats byte size in human-readable format
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
