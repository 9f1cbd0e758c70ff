package credentials

import (
	"encoding/json"

	"github.com/bitrise-io/gcs-resumable-upload/status"
)

type jsonServiceAccountKey struct {
	ClientEmail  string `json:"client_email"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	TokenURI     string `json:"token_uri"`
}

// ParseServiceAccountJSON parses a service-account key in the JSON format
// Google's console exports. source identifies the origin (a file path or
// similar) for error messages; defaultTokenURI substitutes for a missing
// (but not empty) token_uri field, as gcloud's application-default-
// credentials file omits it.
func ParseServiceAccountJSON(content []byte, source, defaultTokenURI string) (ServiceAccountCredentialsInfo, error) {
	var key jsonServiceAccountKey
	if err := json.Unmarshal(content, &key); err != nil {
		return ServiceAccountCredentialsInfo{}, status.Newf(status.InvalidArgument,
			"invalid ServiceAccountCredentials, parsing failed on data loaded from %s: %v", source, err)
	}

	var fieldPresence map[string]json.RawMessage
	if err := json.Unmarshal(content, &fieldPresence); err != nil {
		return ServiceAccountCredentialsInfo{}, status.Newf(status.InvalidArgument,
			"invalid ServiceAccountCredentials, parsing failed on data loaded from %s: %v", source, err)
	}

	for _, field := range []struct{ name, value string }{
		{"private_key_id", key.PrivateKeyID},
		{"private_key", key.PrivateKey},
		{"client_email", key.ClientEmail},
	} {
		if field.value == "" {
			return ServiceAccountCredentialsInfo{}, status.Newf(status.InvalidArgument,
				"invalid ServiceAccountCredentials, the %s field is missing or empty on data loaded from %s", field.name, source)
		}
	}

	// token_uri may be absent entirely (some ADC files omit it), but if
	// present it must not be empty.
	tokenURI := defaultTokenURI
	if _, present := fieldPresence["token_uri"]; present {
		if key.TokenURI == "" {
			return ServiceAccountCredentialsInfo{}, status.Newf(status.InvalidArgument,
				"invalid ServiceAccountCredentials, the token_uri field is empty on data loaded from %s", source)
		}
		tokenURI = key.TokenURI
	}

	return ServiceAccountCredentialsInfo{
		ClientEmail:  key.ClientEmail,
		PrivateKeyID: key.PrivateKeyID,
		PrivateKey:   key.PrivateKey,
		TokenURI:     tokenURI,
	}, nil
}
