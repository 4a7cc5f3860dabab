package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"pemapp/internal/handlers"
	"pemapp/internal/models"
)

// IdentityLoader reads the session and puts the active identity into the
// request context. Requests without a session proceed as the guest identity;
// every handler resolves its history namespace from this one place.
func IdentityLoader() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		email, _ := session.Get(handlers.SessionEmailKey).(string)
		name, _ := session.Get(handlers.SessionNameKey).(string)
		if email == "" {
			c.Next()
			return
		}

		c.Set(handlers.IdentityContextKey, models.Identity{Email: email, Name: name})
		c.Next()
	}
}
