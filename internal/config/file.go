package config

import "time"

// File represents the structure of a wordcrawl configuration file.
//
// The keys match the JSON crawler configuration format, so an existing
// JSON configuration loads unchanged (JSON is valid YAML). Numeric settings
// are pointers so that an explicit zero can be told apart from an absent key.
type File struct {
	// StartPages are the seed URLs.
	StartPages []string `yaml:"startPages,omitempty"`

	// IgnoredURLs are full-match regular expressions for URLs to skip.
	IgnoredURLs []string `yaml:"ignoredUrls,omitempty"`

	// IgnoredWords are full-match regular expressions for words to skip.
	IgnoredWords []string `yaml:"ignoredWords,omitempty"`

	// Parallelism is the number of concurrent fetches.
	Parallelism *int `yaml:"parallelism,omitempty"`

	// ImplementationOverride is "parallel" or "sequential".
	ImplementationOverride string `yaml:"implementationOverride,omitempty"`

	// MaxDepth is the depth budget per start page.
	MaxDepth *int `yaml:"maxDepth,omitempty"`

	// TimeoutSeconds is the crawl deadline in seconds.
	TimeoutSeconds *int `yaml:"timeoutSeconds,omitempty"`

	// PopularWordCount is the number of words in the result.
	PopularWordCount *int `yaml:"popularWordCount,omitempty"`

	// ProfileOutputPath is where timing data is appended.
	ProfileOutputPath string `yaml:"profileOutputPath,omitempty"`

	// ResultPath is where the result is written.
	ResultPath string `yaml:"resultPath,omitempty"`

	// Headers are custom HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Cookie is an HTTP cookie sent with every request.
	Cookie string `yaml:"cookie,omitempty"`

	// UserAgent overrides the default User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// ApplyTo copies every setting present in the file into cfg.
// Absent keys leave the corresponding Config field untouched.
func (f *File) ApplyTo(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}

	if len(f.StartPages) > 0 {
		cfg.StartPages = append([]string(nil), f.StartPages...)
	}
	if len(f.IgnoredURLs) > 0 {
		cfg.IgnoredURLs = append([]string(nil), f.IgnoredURLs...)
	}
	if len(f.IgnoredWords) > 0 {
		cfg.IgnoredWords = append([]string(nil), f.IgnoredWords...)
	}
	if f.Parallelism != nil {
		cfg.Parallelism = *f.Parallelism
	}
	if f.ImplementationOverride != "" {
		cfg.ImplementationOverride = f.ImplementationOverride
	}
	if f.MaxDepth != nil {
		cfg.MaxDepth = *f.MaxDepth
	}
	if f.TimeoutSeconds != nil {
		cfg.Timeout = time.Duration(*f.TimeoutSeconds) * time.Second
	}
	if f.PopularWordCount != nil {
		cfg.PopularWordCount = *f.PopularWordCount
	}
	if f.ProfileOutputPath != "" {
		cfg.ProfileOutputPath = f.ProfileOutputPath
	}
	if f.ResultPath != "" {
		cfg.ResultPath = f.ResultPath
	}
	if len(f.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			cfg.Headers[k] = v
		}
	}
	if f.Cookie != "" {
		cfg.Cookie = f.Cookie
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
}
