package transport

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

var errUnauthorized = errors.New("missing or unknown bearer token")

// Auth resolves who is calling a privileged route. Root is only ever granted by AdminToken,
// never by anything in the request body.
type Auth struct {
	// AdminToken authenticates root. Empty disables root over REST.
	AdminToken string
	// AccountTokens maps a bearer token to the account it authenticates.
	AccountTokens map[string]model.AccountID
	// TrustDeclared accepts the account named in the body when no token is sent. Devnet only.
	TrustDeclared bool
}

// caller returns the origin of r. declared is the account the body names, if any.
func (a Auth) caller(r *http.Request, declared model.AccountID) (model.Origin, error) {
	token, ok := bearer(r)
	if !ok {
		if a.TrustDeclared {
			return model.Origin{Account: declared}, nil
		}
		return model.Origin{}, errUnauthorized
	}
	if a.AdminToken != "" && tokenEqual(token, a.AdminToken) {
		return model.Origin{Root: true}, nil
	}
	for known, account := range a.AccountTokens {
		if tokenEqual(token, known) {
			return model.Origin{Account: account}, nil
		}
	}
	return model.Origin{}, errUnauthorized
}

// trustee resolves the account acting on a proposal. The token, when present, must
// authenticate the account the body names.
func (a Auth) trustee(r *http.Request, declared model.AccountID) (model.AccountID, error) {
	origin, err := a.caller(r, declared)
	if err != nil {
		return "", err
	}
	if origin.Root {
		return "", model.Errorf(model.KindNotTrustee, "root is not a trustee")
	}
	if declared != "" && origin.Account != declared {
		return "", model.Errorf(model.KindNotTrustee, "token authenticates %q, not %q", origin.Account, declared)
	}
	return origin.Account, nil
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func tokenEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
