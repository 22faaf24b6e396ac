package platforms

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// oauth1Signer produces OAuth 1.0a Authorization headers with HMAC-SHA1
// signatures, the scheme the Twitter v2 user-context endpoints still require.
type oauth1Signer struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string

	// overridable for deterministic tests
	nonce     func() string
	timestamp func() string
}

func newOAuth1Signer(consumerKey, consumerSecret, token, tokenSecret string) *oauth1Signer {
	return &oauth1Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		token:          token,
		tokenSecret:    tokenSecret,
		nonce: func() string {
			b := make([]byte, 16)
			rand.Read(b) //nolint:errcheck
			return hex.EncodeToString(b)
		},
		timestamp: func() string {
			return fmt.Sprintf("%d", time.Now().Unix())
		},
	}
}

// authorizationHeader signs a request. Query parameters participate in the
// signature base string; a JSON body does not.
func (s *oauth1Signer) authorizationHeader(method, rawURL string, query url.Values) string {
	oauthParams := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        s.timestamp(),
		"oauth_token":            s.token,
		"oauth_version":          "1.0",
	}

	// Collect all parameters for the signature base string.
	all := make(map[string]string, len(oauthParams)+len(query))
	for k, v := range oauthParams {
		all[k] = v
	}
	for k, vs := range query {
		if len(vs) > 0 {
			all[k] = vs[0]
		}
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, percentEncode(k))
	}
	sort.Strings(keys)

	decoded := make(map[string]string, len(all))
	for k, v := range all {
		decoded[percentEncode(k)] = v
	}

	var pairs []string
	for _, k := range keys {
		pairs = append(pairs, k+"="+percentEncode(decoded[k]))
	}
	paramString := strings.Join(pairs, "&")

	base := strings.ToUpper(method) + "&" + percentEncode(rawURL) + "&" + percentEncode(paramString)
	signingKey := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(base))
	oauthParams["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	headerKeys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		headerKeys = append(headerKeys, k)
	}
	sort.Strings(headerKeys)

	var header []string
	for _, k := range headerKeys {
		header = append(header, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(oauthParams[k])))
	}
	return "OAuth " + strings.Join(header, ", ")
}

// percentEncode implements RFC 3986 encoding, stricter than url.QueryEscape.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
