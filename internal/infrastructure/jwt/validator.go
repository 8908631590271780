package jwt

import (
	"encoding/json"
	"fmt"
	"slices"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
)

// ValidateBasicClaims checks aud membership and iss equality of decoded claims.
// An empty expected value skips that check. Mismatches are returned in order: aud, then iss.
func ValidateBasicClaims(claims domain.Claims, expectedAud, expectedIss string) (bool, []string) {
	var reasons []string
	mapClaims := gojwt.MapClaims(claims)

	if expectedAud != "" {
		// aud may be a single string or a list; anything else never matches
		audience, err := mapClaims.GetAudience()
		if err != nil || !slices.Contains(audience, expectedAud) {
			reasons = append(reasons, fmt.Sprintf("aud does not include '%s': %s", expectedAud, formatClaim(claims["aud"])))
		}
	}

	if expectedIss != "" {
		issuer, err := mapClaims.GetIssuer()
		if err != nil || issuer != expectedIss {
			reasons = append(reasons, fmt.Sprintf("iss mismatch: expected '%s', actual '%s'", expectedIss, formatClaim(claims["iss"])))
		}
	}

	return len(reasons) == 0, reasons
}

func formatClaim(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(raw)
}
