package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	fbauth "firebase.google.com/go/v4/auth"
)

// IDトークン検証の約束。本番はFirebase、テストはスタブ。
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (uid string, email string, err error)
}

// Firebase Admin SDKによる実装。
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (string, string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", "", err
	}

	email := ""
	if e, ok := token.Claims["email"].(string); ok {
		email = e
	}

	return token.UID, email, nil
}

// 認証必須ルート用。未認証は401（クライアント側でログインへリダイレクト）。
func RequireUser(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, email, ok := verifyBearer(c, verifier)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxSessionIDKey, uid)
			c.Set(CtxUserIDKey, uid)
			c.Set(CtxUserEmailKey, email)
			return next(c)
		}
	}
}

// Authorization: Bearer <idToken> を検証する。失敗しても落とさない（best effort）。
func verifyBearer(c echo.Context, verifier TokenVerifier) (string, string, bool) {
	if verifier == nil {
		return "", "", false
	}

	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return "", "", false
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "", false
	}
	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", "", false
	}

	uid, email, err := verifier.Verify(c.Request().Context(), raw)
	if err != nil || uid == "" {
		return "", "", false
	}

	return uid, email, true
}
