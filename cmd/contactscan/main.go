// Package main provides the entry point for the contactscan CLI.
//
// contactscan crawls websites and extracts contact signals: email
// addresses, phone numbers, social profile links, and page metadata.
//
// Usage:
//
//	contactscan crawl <url>
//	contactscan crawl --recursive <url>
//
// See --help for all available options.
package main

// main is the entry point for contactscan.
func main() {
	Execute()
}
