// Package report renders search reports.
//
// Writers for three formats are provided:
//   - TextWriter: numbered results for terminal display
//   - JSONWriter: structured JSON for scripts and other tools
//   - MarkdownWriter: GitHub-flavored Markdown for sharing
//
// All writers implement Writer and can be combined with MultiWriter.
package report
