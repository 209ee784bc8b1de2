// Package markdown converts between markdown text and the document model.
// Export follows a fixed dialect (ATX headings, fenced code, `-` bullets,
// `<u>` for underline) that the importer reads back to an equal model.
package markdown
