package core

import (
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"
)

// IsDebianVersion reports whether value is a valid Debian version string.
func IsDebianVersion(value string) bool {
	_, err := debversion.NewVersion(value)
	return err == nil
}

// isPep440Version reports whether value is a concrete PEP 440 version.
// Wildcards such as "1.*" are rejected.
func isPep440Version(value string) bool {
	_, err := pep440.Parse(value)
	return err == nil
}
