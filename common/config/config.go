/*
 *  Licensed to Wikifeat under one or more contributor license agreements.
 *  See the LICENSE.txt file distributed with this work for additional information
 *  regarding copyright ownership.
 *
 *  Redistribution and use in source and binary forms, with or without
 *  modification, are permitted provided that the following conditions are met:
 *
 *  * Redistributions of source code must retain the above copyright notice,
 *  this list of conditions and the following disclaimer.
 *  * Redistributions in binary form must reproduce the above copyright
 *  notice, this list of conditions and the following disclaimer in the
 *  documentation and/or other materials provided with the distribution.
 *  * Neither the name of Wikifeat nor the names of its contributors may be used
 *  to endorse or promote products derived from this software without
 *  specific prior written permission.
 *
 *  THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
 *  AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
 *  IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
 *  ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT OWNER OR CONTRIBUTORS BE
 *  LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
 *  CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
 *  SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
 *  INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
 *  CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
 *  ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 *  POSSIBILITY OF SUCH DAMAGE.
 */

// Package config holds process-wide settings for the wiki service and
// fetches them from etcd, the way the teacher's common/config package
// fetches its own service sections.
package config

import "time"

// WikiConfig holds the settings that govern page resolution, parsing,
// listing, and the background maintenance jobs (C8). The results-per-page
// bounds and MaxCommentLength are not read by code in this module: the
// special-page listings use their own default of 50 without clamping,
// and comment length is not checked.
type WikiConfig struct {
	SiteName      string
	ServerURL     string
	ServerName    string
	StaticPath    string
	WikiPathPrefix string

	ResultsPerPageMin int
	ResultsPerPageMax int
	ResultsPerPageDefault int

	MaxCommentLength int

	// MaxParseSize is the hard ceiling, in characters, on wikicode the
	// parser will accept before aborting with an error marker instead of
	// a rendered page.
	MaxParseSize int

	// MaxTranscludeDepth bounds recursive template transclusion.
	MaxTranscludeDepth int

	RefreshPageCachesInterval     time.Duration
	DeleteExpiredRecordsInterval time.Duration
}

// Wiki holds the live configuration. It is populated by FetchWikiConfig
// and is safe to read concurrently once fetched; defaults below are
// usable standalone for tests that never call FetchWikiConfig.
var Wiki = WikiConfig{
	SiteName:       "OTTM Wiki",
	ServerURL:      "http://localhost:8080",
	ServerName:     "localhost",
	StaticPath:     "/static/",
	WikiPathPrefix: "/wiki/",

	ResultsPerPageMin:     10,
	ResultsPerPageMax:     500,
	ResultsPerPageDefault: 50,

	MaxCommentLength: 400,

	MaxParseSize:       10_000_000,
	MaxTranscludeDepth: 20,

	RefreshPageCachesInterval:    10 * time.Minute,
	DeleteExpiredRecordsInterval: time.Hour,
}

// ConfigPrefix is the etcd key prefix under which every wiki setting is
// stored, generalized from the teacher's "/wikifeat/config/" scheme.
const ConfigPrefix = "/ottm-wiki/config/"

// WikiConfigLocation is the etcd key prefix for WikiConfig fields.
const WikiConfigLocation = ConfigPrefix + "wiki/"
