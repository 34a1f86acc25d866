// Package printing lays out invoices as HTML and prints them to PDF with a
// headless Chrome driven over the DevTools protocol.
package printing
