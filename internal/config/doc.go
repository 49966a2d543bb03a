// Package config provides the crawl configuration: the Config struct built
// from CLI flags, the File structure read from YAML or JSON configuration
// files, and the XDG directories wordcrawl uses for its data.
package config
