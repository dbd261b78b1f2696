// Cyberdeck Core
// Copyright (c) 2025 The Cyberdeck Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Cyberdeck Core.
//
// Cyberdeck Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Cyberdeck Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Cyberdeck Core.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// CredentialEntry holds authentication credentials for a URL, currently
// used for MQTT broker logins.
type CredentialEntry struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Auth maps a URL prefix to its credentials, keyed by "scheme://host".
type Auth map[string]CredentialEntry

// schemeAliases maps protocol variants to their canonical form so
// credentials configured for one scheme match equivalent schemes.
var schemeAliases = map[string]string{
	"tcp": "mqtt",  // MQTT over TCP
	"ssl": "mqtts", // MQTT over TLS
}

var authCfg atomic.Value

// GetAuthCfg returns the loaded credential map, or an empty one.
func GetAuthCfg() Auth {
	val := authCfg.Load()
	if val == nil {
		return Auth{}
	}
	auth, ok := val.(Auth)
	if !ok {
		return Auth{}
	}
	return auth
}

// LoadAuthFromData parses credential TOML. Unparseable data yields an
// empty map rather than an error, a bad auth file must not stop startup.
func LoadAuthFromData(data []byte) Auth {
	var vals Auth
	if err := toml.Unmarshal(data, &vals); err != nil {
		log.Warn().Err(err).Msg("failed to unmarshal auth file")
		return Auth{}
	}
	return vals
}

// loadAuth reads the auth file if present and stores the credential map.
func loadAuth(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	log.Info().Msg("loading auth file")
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read auth file")
		return
	}

	vals := LoadAuthFromData(data)
	log.Info().Msgf("loaded %d auth entries", len(vals))
	authCfg.Store(vals)
}

// canonicalScheme maps a URL scheme through schemeAliases.
func canonicalScheme(scheme string) string {
	scheme = strings.ToLower(scheme)
	if canonical, ok := schemeAliases[scheme]; ok {
		return canonical
	}
	return scheme
}

// LookupAuth finds credentials for a target URL. Matching is by canonical
// scheme and host.
func LookupAuth(auth Auth, target string) *CredentialEntry {
	targetURL, err := url.Parse(target)
	if err != nil {
		return nil
	}

	for key, entry := range auth {
		keyURL, err := url.Parse(key)
		if err != nil {
			continue
		}
		if canonicalScheme(keyURL.Scheme) != canonicalScheme(targetURL.Scheme) {
			continue
		}
		if !strings.EqualFold(keyURL.Host, targetURL.Host) {
			continue
		}
		return &entry
	}

	return nil
}
