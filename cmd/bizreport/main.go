// Package main provides the entry point for the bizreport CLI.
//
// bizreport loads JSON exports of business records and prints a statistics
// report: declared versus actual record counts, ID patterns, top
// categories, duplicate names, record structure and age distribution.
//
// Usage:
//
//	bizreport [data.json...]
//	bizreport history [data.json]
//
// See --help for all available options.
package main

// main is the entry point for bizreport.
func main() {
	Execute()
}
