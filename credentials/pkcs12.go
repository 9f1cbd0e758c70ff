package credentials

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/bitrise-io/gcs-resumable-upload/status"

	"golang.org/x/crypto/pkcs12"
)

// ParseServiceAccountP12 parses a service-account key in the legacy
// PKCS#12 format, decrypted with the fixed passphrase Google's tooling
// documents for this format. source identifies the origin for error
// messages.
func ParseServiceAccountP12(content []byte, source, defaultTokenURI string) (ServiceAccountCredentialsInfo, error) {
	privateKey, cert, err := pkcs12.Decode(content, p12Passphrase)
	if err != nil {
		return ServiceAccountCredentialsInfo{}, status.Newf(status.InvalidArgument,
			"cannot parse PKCS#12 file (%s): %v", source, err)
	}
	if privateKey == nil || cert == nil {
		return ServiceAccountCredentialsInfo{}, status.Newf(status.InvalidArgument,
			"no private key or certificate found in PKCS#12 file (%s)", source)
	}

	rsaKey, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return ServiceAccountCredentialsInfo{}, status.Newf(status.InvalidArgument,
			"private key in PKCS#12 file (%s) is not an RSA key", source)
	}

	serviceAccountID := cert.Subject.CommonName
	if !isNumericServiceAccountID(serviceAccountID) {
		return ServiceAccountCredentialsInfo{}, status.Newf(status.InvalidArgument,
			"invalid PKCS#12 file (%s): service account id missing or not formatted correctly", source)
	}

	der, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	if err != nil {
		return ServiceAccountCredentialsInfo{}, status.Newf(status.Unknown,
			"cannot encode private key from PKCS#12 file (%s): %v", source, err)
	}
	pemBlock := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	return ServiceAccountCredentialsInfo{
		ClientEmail:  serviceAccountID,
		PrivateKeyID: unknownPrivateKeyID,
		PrivateKey:   string(pemBlock),
		TokenURI:     defaultTokenURI,
	}, nil
}

// isNumericServiceAccountID reports whether s is non-empty and consists
// only of decimal digits, the shape of the numeric id PKCS#12 service-
// account certificates carry as their subject common name.
func isNumericServiceAccountID(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsFunc(s, func(r rune) bool { return r < '0' || r > '9' })
}
