// Package config provides configuration structures and utilities for
// contactscan. It defines the crawl options populated from CLI flags,
// their validation, and the optional per-site YAML configuration file.
package config
