package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/labelsort/pkg/handlers"
)

// Principal identifies an authenticated caller.
type Principal struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Principal, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's provider metadata and returns a
// verifier for ID tokens issued to clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (TokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider %s: %w", issuer, err)
	}
	return &oidcVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) (*Principal, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	p := &Principal{Subject: token.Subject}
	if err := token.Claims(p); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return p, nil
}

type principalKey struct{}

// PrincipalFrom returns the authenticated caller stored by Auth.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// Auth returns middleware that requires a valid bearer token. Preflight
// requests pass through so CORS can answer them.
func Auth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				handlers.RespondError(w, logger, http.StatusUnauthorized, errUnauthorized)
				return
			}

			p, err := verifier.Verify(r.Context(), strings.TrimSpace(raw))
			if err != nil {
				logger.Debug("token rejected", "error", err)
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				handlers.RespondError(w, logger, http.StatusUnauthorized, errUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
