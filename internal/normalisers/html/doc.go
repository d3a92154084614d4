// Package html turns web pages and .html uploads into one text segment.
//
// Pages are parsed with golang.org/x/net/html. Block elements become line
// breaks and invisible elements are dropped. The title, lang attribute and
// meta description are kept as segment metadata.
package html
