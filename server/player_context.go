package server

import (
	"github.com/gin-gonic/gin"

	"github.com/Digital-Creators-Team/lotto-ledger/auth"
	"github.com/Digital-Creators-Team/lotto-ledger/errors"
	"github.com/Digital-Creators-Team/lotto-ledger/logging"
	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
)

const playerKey = "player"

// Player is the authenticated caller together with their wallet.
type Player struct {
	UserID   string
	Username string
	Account  *lotto.Account
}

// PlayerContextMiddleware resolves the wallet of the authenticated user and
// stores it on the gin context. It must run after the JWT middleware.
func (a *App) PlayerContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.GetClaims(c)
		if !ok {
			Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
			return
		}
		account, err := a.wallets.Account(c.Request.Context(), claims.UserID)
		if err != nil {
			logger := logging.WithUserID(a.logger, claims.UserID)
			logger.Error().Err(err).Msg("Failed to open wallet")
			HandleAppError(c, err)
			return
		}
		c.Set(playerKey, &Player{UserID: claims.UserID, Username: claims.Username, Account: account})
		c.Next()
	}
}

// GetPlayer returns the player set by PlayerContextMiddleware.
func GetPlayer(c *gin.Context) (*Player, bool) {
	v, ok := c.Get(playerKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Player)
	return p, ok
}

func mustPlayer(c *gin.Context) *Player {
	p, ok := GetPlayer(c)
	if !ok {
		panic("server: player route registered without PlayerContextMiddleware")
	}
	return p
}
