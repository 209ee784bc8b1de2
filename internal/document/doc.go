// Package document holds the in-memory rich-text tree edited during a
// session. Nodes form a closed set of pointer types: blocks live at the root
// or inside quotes, inline runs live inside paragraphs, headings, links and
// list items. Stable block handles are kept in a side table on Document so the
// tree itself never carries identifiers or back references.
package document
