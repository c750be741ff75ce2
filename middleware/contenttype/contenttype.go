// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package contenttype provides middleware that enforces the media type
// contract of a JSON API: the Content-Type must be exactly application/json,
// optionally carrying a profile and a version parameter that match the
// values the application was configured with.
package contenttype

import (
	"mime"

	"github.com/rivaas-dev/basic-auth-service/errors"
	"github.com/rivaas-dev/basic-auth-service/router"
)

// MediaType is the only media type accepted by the guard.
const MediaType = "application/json"

// defaultMediaType stands in for a missing Content-Type header (RFC 9110 §8.3).
const defaultMediaType = "application/octet-stream"

// Option defines functional options for contenttype middleware configuration.
type Option func(*config)

type config struct {
	// profile is the required "profile" parameter, empty for any
	profile string

	// version is the required "version" parameter, empty for any
	version string

	formatter errors.Formatter
}

func defaultConfig() *config {
	return &config{
		formatter: errors.NewSimple(),
	}
}

// WithProfile requires the "profile" media type parameter to equal profile.
// An empty profile accepts any value.
func WithProfile(profile string) Option {
	return func(cfg *config) {
		cfg.profile = profile
	}
}

// WithVersion requires the "version" media type parameter to equal version.
// An empty version accepts any value.
func WithVersion(version string) Option {
	return func(cfg *config) {
		cfg.version = version
	}
}

// WithFormatter sets the formatter used to render rejections.
func WithFormatter(f errors.Formatter) Option {
	return func(cfg *config) {
		if f != nil {
			cfg.formatter = f
		}
	}
}

// New returns a middleware that rejects requests whose Content-Type does not
// satisfy the configured contract with 400 BadRequest.
//
// The check runs for every method, bodyless ones included, and a missing
// header counts as application/octet-stream.
//
// Example:
//
//	creds := r.Group("", contenttype.New(
//	    contenttype.WithProfile("credentials"),
//	    contenttype.WithVersion("1.0"),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	expected := cfg.expected()

	return func(c *router.Context) {
		header := c.Request.Header.Get("Content-Type")
		if Match(header, cfg.profile, cfg.version) {
			c.Next()
			return
		}

		err := errors.BadRequest("Expected content type %s", expected).With("content_type", header)
		_ = errors.Write(c.Response, c.Request, cfg.formatter, err)
		c.Abort()
	}
}

// Match reports whether header satisfies the contract. Empty profile or
// version place no constraint on the respective parameter.
func Match(header, profile, version string) bool {
	if header == "" {
		header = defaultMediaType
	}

	mediaType, params, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	if mediaType != MediaType {
		return false
	}
	if profile != "" && params["profile"] != profile {
		return false
	}
	if version != "" && params["version"] != version {
		return false
	}

	return true
}

func (cfg *config) expected() string {
	s := MediaType
	if cfg.profile != "" {
		s += ";profile=" + cfg.profile
	}
	if cfg.version != "" {
		s += ";version=" + cfg.version
	}
	return s
}

// RequestHeader returns the Content-Type a client must send to satisfy a
// guard configured with profile and version.
func RequestHeader(profile, version string) string {
	return (&config{profile: profile, version: version}).expected()
}
