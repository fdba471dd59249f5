package main

import (
	"strconv"

	"github.com/SLASHOO/SkyMotion-Library/internal/saved"
	"github.com/SLASHOO/SkyMotion-Library/internal/widget"
)

func renderSaved(items []saved.Item, colorize bool) string {
	if len(items) == 0 {
		return "No saved moves yet."
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.ID, item.Title, item.Duration})
	}
	return renderTable(
		[]string{"ID", "Title", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
		colorize,
	)
}

func renderSummary(s widget.Summary, colorize bool) string {
	mode := "Free"
	if s.Session {
		mode = "Session"
	}
	rows := [][]string{
		{"Mode", mode},
		{"Camera", s.CameraReady},
		{"ISO", s.ISO},
		{"ND filter", s.ND},
		{"Picked", s.Picked},
		{"Saved", strconv.Itoa(s.SavedCount)},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil, colorize)
}
