package utils

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

func badge(text, bg, fg string) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(text).
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg)).Bold(true)
}

// Styles 各级别的彩色标签
func Styles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = badge("DEBUG", "#1E1E1EFF", "#A0A0A0FF")
	styles.Levels[log.InfoLevel] = badge("INFO🌟", "#90EE9080", "#006400FF")
	styles.Levels[log.WarnLevel] = badge("WARN🍪", "#FFD70080", "#000000FF")
	styles.Levels[log.ErrorLevel] = badge("ERROR🔥", "#FF0000FF", "#FFFFFFFF")
	styles.Levels[log.FatalLevel] = badge("FATAL⚡️", "#000000FF", "#FF0000FF")
	return styles
}

// NewLogger 写到 stderr
func NewLogger(level string) (*log.Logger, error) {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo level 为空时使用 info
func NewLoggerTo(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		var err error
		if lvl, err = log.ParseLevel(level); err != nil {
			return nil, err
		}
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           lvl,
	})
	logger.SetStyles(Styles())
	return logger, nil
}
