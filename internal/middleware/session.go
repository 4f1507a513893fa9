package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"podstore/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionIDKey = "session_id" // string
	CtxUserIDKey    = "user_id"    // string（未ログインなら空）
	CtxUserEmailKey = "user_email" // string
)

// ゲストセッショントークンの有効期限
const sessionTokenTTL = 7 * 24 * time.Hour

// 新しいゲストセッショントークンを発行する。
// カート・カスタマイザーはこのセッションIDで引く。
func IssueSessionToken(cfg config.Config) (string, string, error) {
	sessionID := uuid.NewString()
	now := time.Now()

	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(sessionTokenTTL).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(cfg.SessionSecret))
	if err != nil {
		return "", "", err
	}

	return signed, sessionID, nil
}

// X-Session-Tokenヘッダ用のセッション検証ミドルウェア。
// 認証済みユーザーはuidをそのままセッションIDとして使う。
func CartSession(cfg config.Config, verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// ログイン済みならBearerトークンを優先
			if uid, email, ok := verifyBearer(c, verifier); ok {
				c.Set(CtxSessionIDKey, uid)
				c.Set(CtxUserIDKey, uid)
				c.Set(CtxUserEmailKey, email)
				return next(c)
			}

			raw := strings.TrimSpace(c.Request().Header.Get("X-Session-Token"))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("session required"))
			}

			sessionID, err := ParseSessionToken(cfg, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("invalid session"))
			}

			c.Set(CtxSessionIDKey, sessionID)
			c.Set(CtxUserIDKey, "")
			return next(c)
		}
	}
}

// セッショントークンを検証してセッションIDを返す。
func ParseSessionToken(cfg config.Config, raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.SessionSecret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("invalid sid")
	}

	return sid, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
