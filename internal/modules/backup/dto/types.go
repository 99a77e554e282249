package dto

import "time"

type ExportOutput struct {
	Path    string
	Counts  map[string]int
	Local   int
	Written time.Time
}

type ImportOutput struct {
	Counts map[string]int
	Local  int
}

type JournalExportOutput struct {
	Dir   string
	Notes int
}
