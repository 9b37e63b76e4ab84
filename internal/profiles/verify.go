package profiles

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/user/oneclick-vpn/internal/wgconf"
)

// SecurityConfig is the file name of the release network security config.
const SecurityConfig = "network_security_config.xml"

var requiredSections = []string{"Interface", "Peer"}

var forbiddenSecurity = []*regexp.Regexp{
	regexp.MustCompile(`(?i)src\s*=\s*"user"`),
	regexp.MustCompile(`(?i)cleartextTrafficPermitted\s*=\s*"true"`),
}

// Verify checks that every profile exists in fsys, contains both an
// [Interface] and a [Peer] section and parses. All problems are reported.
func Verify(fsys fs.FS) error {
	if _, err := fs.Stat(fsys, Dir); err != nil {
		return fmt.Errorf("WireGuard assets directory missing: %w", err)
	}

	var errs []error
	for _, name := range Names() {
		file := path.Base(name)
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("required WireGuard profile missing: %s", file))
			continue
		}
		text := string(data)

		var missing []string
		for _, section := range requiredSections {
			if !strings.Contains(text, "["+section+"]") {
				missing = append(missing, section)
			}
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Errorf("WireGuard profile %s missing sections: %s",
				file, strings.Join(missing, ", ")))
			continue
		}
		if _, err := wgconf.Parse(text); err != nil {
			errs = append(errs, fmt.Errorf("WireGuard profile %s: %w", file, err))
		}
	}
	return errors.Join(errs...)
}

// VerifySecurityConfig rejects a network security config that trusts user
// installed CAs or permits cleartext traffic.
func VerifySecurityConfig(data []byte) error {
	for _, re := range forbiddenSecurity {
		if re.Match(data) {
			return fmt.Errorf("forbidden attribute detected in release network security config: %s",
				strings.TrimPrefix(re.String(), "(?i)"))
		}
	}
	return nil
}

// VerifyRelease runs Verify and checks SecurityConfig at the root of fsys.
func VerifyRelease(fsys fs.FS) error {
	var errs []error
	if err := Verify(fsys); err != nil {
		errs = append(errs, err)
	}
	data, err := fs.ReadFile(fsys, SecurityConfig)
	if err != nil {
		errs = append(errs, fmt.Errorf("release network security config missing: %w", err))
	} else if err := VerifySecurityConfig(data); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
