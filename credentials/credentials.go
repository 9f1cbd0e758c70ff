// Package credentials parses Google Cloud service-account credentials from
// JSON and PKCS#12 files, and locates candidate credential files on disk.
package credentials

// ServiceAccountCredentialsInfo is the parsed shape of a service-account
// key, regardless of source format.
type ServiceAccountCredentialsInfo struct {
	ClientEmail  string
	PrivateKeyID string
	PrivateKey   string
	TokenURI     string
	Scopes       []string
	Subject      string
}

// unknownPrivateKeyID is substituted for PrivateKeyID when parsing a
// PKCS#12 file, which does not carry this field.
const unknownPrivateKeyID = "--unknown--"

// p12Passphrase is the fixed, documented passphrase Google's tooling uses
// to encrypt service-account PKCS#12 files.
const p12Passphrase = "notasecret"
