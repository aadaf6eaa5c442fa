// Package converters turns source files into ingestion artifacts.
//
// A converter reduces one source format to plain text plus metadata;
// the ingestion pipeline itself never parses anything but text. Each
// format lives in its own subpackage; textfile is the fallback for
// anything that is already UTF-8 text.
package converters
