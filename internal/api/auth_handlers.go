package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func CreatePinHandler(c *gin.Context) {
	pin, err := authSvc.CreatePin()
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pin_id":     pin.PinID,
		"code":       pin.Code,
		"auth_url":   pin.AuthURL,
		"expires_in": pin.ExpiresIn,
	})
}

func CheckPinHandler(c *gin.Context) {
	pinID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PIN id"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code"})
		return
	}

	authorized, token, err := authSvc.CheckPin(pinID, code)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	resp := gin.H{"authorized": authorized}
	if authorized {
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

// CompletePinLoginHandler finishes the PIN flow: checks the PIN once more
// and, if approved, validates the token and opens a session.
func CompletePinLoginHandler(c *gin.Context) {
	pinID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PIN id"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code"})
		return
	}

	authorized, token, err := authSvc.CheckPin(pinID, req.Code)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	if !authorized {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PIN not yet authorized"})
		return
	}

	session, err := authSvc.LoginWithToken(token)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"user":  session.User,
	})
}

// TokenLoginHandler logs in with a token pasted by the user.
func TokenLoginHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	session, err := authSvc.LoginWithToken(req.Token)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"user":  session.User,
	})
}

func SessionHandler(c *gin.Context) {
	sess, ok := requestSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":              sess.User,
		"server_url":        sess.ServerURL,
		"server_name":       sess.ServerName,
		"server_machine_id": sess.ServerMachineID,
		"is_managed_user":   sess.IsManagedUser,
	})
}

func UserHandler(c *gin.Context) {
	user, err := authSvc.ValidateToken(requestToken(c))
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func LogoutHandler(c *gin.Context) {
	authSvc.Logout(requestToken(c))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func HomeUsersHandler(c *gin.Context) {
	users, err := authSvc.HomeUsers(requestToken(c))
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SwitchUserHandler switches to a Plex Home managed user. The new token
// replaces the caller's token for subsequent requests.
func SwitchUserHandler(c *gin.Context) {
	var req struct {
		UserUUID string `json:"user_uuid" binding:"required"`
		Pin      string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_uuid"})
		return
	}

	session, err := authSvc.SwitchUser(requestToken(c), req.UserUUID, req.Pin)
	if err != nil {
		abortPlexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"user":  session.User,
	})
}
