// Package resources embeds the bundled WireGuard profiles and the release
// network security configuration.
package resources

import "embed"

// FS holds wg/client01.conf through wg/client30.conf and
// network_security_config.xml.
//
//go:embed wg/*.conf network_security_config.xml
var FS embed.FS
