package loadbalancer

import "github.com/golang-jwt/jwt/v5"

// SessionKeyFromClaim extracts a sticky-session routing key from
// already-parsed JWT claims, looking up claimName (e.g. "sub" or a
// tenant-specific claim). It does not parse or verify a token — callers
// are expected to have done that upstream — it only reads one string
// claim out of the result, the same claims[name].(string) idiom the
// teacher's JWT authenticator uses to pull principal/tenant/roles. Returns
// "" if the claim is absent or not a string, which Pick treats as "no
// sticky key" and falls through to the configured Strategy.
func SessionKeyFromClaim(claims jwt.MapClaims, claimName string) string {
	if v, ok := claims[claimName].(string); ok {
		return v
	}
	return ""
}
